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
	"strings"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// Reader provides access to the tensors in a checkpoint file.
//
// The file is memory-mapped when the platform allows it, so opening a
// large checkpoint only touches the pages actually read. When mapping
// fails the whole file is read into memory instead.
type Reader struct {
	file    *os.File // nil when the file was read into memory
	data    []byte   // whole file, mapped or heap-backed
	mapped  bool
	header  fileHeader
	dataOff int64
	closed  bool
}

// Open opens a checkpoint file, parses its header, and verifies the
// data checksum.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("weights: open %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("weights: stat %s: %w", path, err)
	}
	size := stat.Size()

	r := &Reader{file: f}
	if data, err := mmapFile(f, size); err == nil {
		r.data = data
		r.mapped = true
	} else {
		data := make([]byte, size)
		if _, err := io.ReadFull(f, data); err != nil {
			f.Close()
			return nil, fmt.Errorf("weights: read %s: %w", path, err)
		}
		f.Close()
		r.file = nil
		r.data = data
	}

	if err := r.parse(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// parse decodes the prelude and JSON header and verifies the checksum.
func (r *Reader) parse() error {
	if len(r.data) < preludeSize {
		return fmt.Errorf("%w: file too small (%d bytes)", ErrInvalidMagic, len(r.data))
	}
	if string(r.data[0:4]) != magicBytes {
		return ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(r.data[4:8])
	if version != formatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, formatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(r.data[16:24])
	dataSize := binary.LittleEndian.Uint64(r.data[24:32])
	if headerSize > maxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerEnd := int64(preludeSize) + int64(headerSize)
	if headerEnd > int64(len(r.data)) {
		return fmt.Errorf("weights: header extends beyond file (header end %d, file size %d)", headerEnd, len(r.data))
	}
	if err := json.Unmarshal(r.data[preludeSize:headerEnd], &r.header); err != nil {
		return fmt.Errorf("weights: parse header: %w", err)
	}

	r.dataOff = (headerEnd + dataAlignment - 1) / dataAlignment * dataAlignment
	if r.dataOff > int64(len(r.data)) || dataSize > uint64(int64(len(r.data))-r.dataOff) {
		return fmt.Errorf("weights: data section extends beyond file (offset %d, data size %d, file size %d)",
			r.dataOff, dataSize, len(r.data))
	}

	if err := validateHeader(&r.header, int64(dataSize)); err != nil {
		return err
	}

	var stored [checksumSize]byte
	copy(stored[:], r.data[32:32+checksumSize])
	if sha256.Sum256(r.data[r.dataOff:r.dataOff+int64(dataSize)]) != stored {
		return ErrChecksumMismatch
	}
	return nil
}

// TensorNames returns the names of all tensors in the file, in the
// order they were written.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// Metadata returns the metadata map stored with the checkpoint.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// Tensor decodes the named tensor into a freshly allocated tensor.
func (r *Reader) Tensor(name string) (*tensor.Tensor, error) {
	if r.closed {
		return nil, fmt.Errorf("weights: reader is closed")
	}

	for _, meta := range r.header.Tensors {
		if meta.Name != name {
			continue
		}
		t, err := tensor.New(tensor.Shape(meta.Shape))
		if err != nil {
			return nil, fmt.Errorf("weights: tensor %q: %w", name, err)
		}
		start := r.dataOff + meta.Offset
		decodeFloat32(t.Data(), r.data[start:start+meta.Size])
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
}

// Tensors decodes every tensor in the file, keyed by name.
func (r *Reader) Tensors() (map[string]*tensor.Tensor, error) {
	out := make(map[string]*tensor.Tensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		t, err := r.Tensor(meta.Name)
		if err != nil {
			return nil, err
		}
		out[meta.Name] = t
	}
	return out, nil
}

// Close unmaps and closes the file. It is safe to call twice.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.mapped {
		err = munmapFile(r.data)
	}
	r.data = nil

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// validateHeader rejects malformed tensor tables before any data is
// decoded: wrong dtypes, bad names, shape/size disagreements, and
// regions that overlap or escape the data section.
func validateHeader(h *fileHeader, dataSize int64) error {
	if len(h.Tensors) > maxTensorCount {
		return fmt.Errorf("weights: too many tensors (%d, max %d)", len(h.Tensors), maxTensorCount)
	}

	for _, meta := range h.Tensors {
		if err := validateName(meta.Name); err != nil {
			return err
		}
		if meta.DType != dtypeFloat32 {
			return fmt.Errorf("weights: tensor %q: unsupported dtype %q", meta.Name, meta.DType)
		}
		shape := tensor.Shape(meta.Shape)
		if err := shape.Validate(); err != nil {
			return fmt.Errorf("weights: tensor %q: %w", meta.Name, err)
		}
		if want := int64(shape.NumElements()) * 4; meta.Size != want {
			return fmt.Errorf("weights: tensor %q: size %d does not match shape %v (%d bytes)",
				meta.Name, meta.Size, shape, want)
		}
		if meta.Offset < 0 {
			return fmt.Errorf("weights: tensor %q: negative offset %d", meta.Name, meta.Offset)
		}
		if meta.Offset+meta.Size > dataSize {
			return fmt.Errorf("weights: tensor %q: extends beyond data section (offset %d + size %d > %d)",
				meta.Name, meta.Offset, meta.Size, dataSize)
		}
	}

	sorted := make([]tensorMeta, len(h.Tensors))
	copy(sorted, h.Tensors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Offset+prev.Size > cur.Offset {
			return fmt.Errorf("weights: tensors %q and %q overlap", prev.Name, cur.Name)
		}
	}
	return nil
}

// validateName rejects names that could not have come from the writer.
// Layer-style names with "/" are expected.
func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("weights: empty tensor name")
	case len(name) > maxTensorNameLen:
		return fmt.Errorf("weights: tensor name too long (%d chars, max %d)", len(name), maxTensorNameLen)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("weights: tensor name %q contains a null byte", name)
	}
	return nil
}

// decodeFloat32 unpacks little-endian float32 bits from src.
func decodeFloat32(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
