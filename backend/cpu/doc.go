// Copyright 2025 The Deep Dream Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend for tensor operations.
//
// # Overview
//
// The CPU backend implements every operation of the tensor.Backend
// contract without cgo or external dependencies, so it works on any
// platform the Go toolchain targets. It is the default backend and the
// reference other backends are checked against.
//
// # Basic Usage
//
//	backend := cpu.New()
//
//	out := backend.Conv2D(input, kernel, 2, 3)
//	pooled, indices := backend.MaxPool2D(out, 3, 2)
//
// # Performance
//
// Convolutions lower to an im2col matrix product, which trades memory
// for locality and keeps the inner loop a flat dot product. For the
// small networks this module ships, the CPU backend is fast enough for
// interactive use; for large images on deep layers, prefer the webgpu
// backend when a compatible GPU is present.
//
// # Thread Safety
//
// The backend is stateless and safe for concurrent use. The tensors
// passed in are not: callers must not mutate a tensor while an
// operation is reading it.
package cpu
