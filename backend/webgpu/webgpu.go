// Copyright 2025 The Deep Dream Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides GPU-accelerated tensor operations via WebGPU.
//
// The backend compiles WGSL compute shaders for convolution and pooling
// and runs them through the system's native WebGPU implementation:
//
//   - Windows: DirectX 12 or Vulkan
//   - Linux: Vulkan
//   - macOS: Metal
//
// Construction fails cleanly when no compatible adapter is present, so
// callers can fall back to the cpu backend.
package webgpu

import (
	internalwebgpu "github.com/xdxdVSxdxd/deep-dream/internal/backend/webgpu"
	"github.com/xdxdVSxdxd/deep-dream/tensor"
)

// Backend is the WebGPU compute backend for GPU acceleration.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new WebGPU backend instance.
// It returns an error if no compatible GPU adapter is found.
//
// Example:
//
//	backend, err := webgpu.New()
//	if err != nil {
//		backend := cpu.New() // fall back to CPU
//		_ = backend
//	}
//	defer backend.Release()
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be acquired on this
// system without returning an error.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
