// Package cpu implements the pure-Go CPU backend for the convolution,
// pooling, and gradient kernels the dream pipeline drives.
package cpu

import (
	"github.com/xdxdVSxdxd/deep-dream/internal/parallel"
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// CPUBackend implements tensor.Backend with pure-Go float32 kernels.
// Convolution kernels split their channel loops across goroutines; the
// zero value runs everything sequentially.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// Compile-time interface check.
var _ tensor.Backend = (*CPUBackend)(nil)

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}
