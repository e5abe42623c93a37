package weights

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// WriteFile writes the named tensors to a checkpoint file at path.
func WriteFile(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("weights: create %s: %w", path, err)
	}
	if err := Write(f, tensors, metadata); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("weights: close %s: %w", path, err)
	}
	return nil
}

// Write writes the named tensors as a checkpoint to w. Tensor names
// are sorted so the output is deterministic.
func Write(w io.Writer, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := fileHeader{
		FormatVersion: formatVersion,
		Tensors:       make([]tensorMeta, 0, len(names)),
		Metadata:      metadata,
	}

	var offset int64
	for _, name := range names {
		t := tensors[name]
		size := int64(t.NumElements()) * 4
		header.Tensors = append(header.Tensors, tensorMeta{
			Name:   name,
			DType:  dtypeFloat32,
			Shape:  []int(t.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	data := make([]byte, offset)
	for i, name := range names {
		meta := header.Tensors[i]
		encodeFloat32(data[meta.Offset:meta.Offset+meta.Size], tensors[name].Data())
	}
	checksum := sha256.Sum256(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("weights: marshal header: %w", err)
	}

	prelude := make([]byte, preludeSize)
	copy(prelude[0:4], magicBytes)
	binary.LittleEndian.PutUint32(prelude[4:8], formatVersion)
	binary.LittleEndian.PutUint64(prelude[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(prelude[24:32], uint64(len(data)))
	copy(prelude[32:32+checksumSize], checksum[:])

	if _, err := w.Write(prelude); err != nil {
		return fmt.Errorf("weights: write prelude: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("weights: write header: %w", err)
	}

	pos := int64(preludeSize) + int64(len(headerJSON))
	if pad := (dataAlignment - pos%dataAlignment) % dataAlignment; pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("weights: write padding: %w", err)
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("weights: write tensor data: %w", err)
	}
	return nil
}

// encodeFloat32 packs values into dst as little-endian float32 bits.
func encodeFloat32(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
