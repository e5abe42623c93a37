// Package weights reads and writes network parameter checkpoints.
//
// A checkpoint is a single binary file:
//
//	[64-byte prelude]
//	  0x00  magic "DRWT"
//	  0x04  format version (uint32 LE)
//	  0x08  reserved (8 bytes)
//	  0x10  header size (uint64 LE)
//	  0x18  data size (uint64 LE)
//	  0x20  SHA-256 checksum of the data section (32 bytes)
//	[JSON header: tensor names, shapes, offsets, metadata]
//	[zero padding to a 64-byte boundary]
//	[tensor data: float32 little-endian, tightly packed]
//
// Tensors are written in sorted name order, so saving the same
// parameters twice produces byte-identical files. The checksum is
// verified on open.
package weights

// Format constants.
const (
	magicBytes    = "DRWT"
	formatVersion = 1
	preludeSize   = 64
	dataAlignment = 64
	checksumSize  = 32
)

// Limits enforced when reading untrusted files.
const (
	maxHeaderSize    = 16 * 1024 * 1024
	maxTensorCount   = 4096
	maxTensorNameLen = 1024
)

const dtypeFloat32 = "float32"

// fileHeader is the JSON header between the prelude and the data
// section.
type fileHeader struct {
	FormatVersion int               `json:"format_version"`
	Tensors       []tensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// tensorMeta describes one tensor in the data section.
type tensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}
