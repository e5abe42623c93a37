package weights

import "errors"

// Errors returned while opening a checkpoint.
var (
	ErrInvalidMagic       = errors.New("weights: not a checkpoint file")
	ErrUnsupportedVersion = errors.New("weights: unsupported format version")
	ErrChecksumMismatch   = errors.New("weights: checksum mismatch, file may be corrupted")
	ErrHeaderTooLarge     = errors.New("weights: header exceeds maximum size")
	ErrTensorNotFound     = errors.New("weights: no such tensor")
)
