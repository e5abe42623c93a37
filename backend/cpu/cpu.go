// Copyright 2025 The Deep Dream Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/xdxdVSxdxd/deep-dream/internal/backend/cpu"
	"github.com/xdxdVSxdxd/deep-dream/tensor"
)

// Backend is the CPU compute backend (pure Go implementation).
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend instance.
//
// Example:
//
//	backend := cpu.New()
//	out := backend.Conv2D(input, kernel, 1, 1)
func New() *Backend {
	return internalcpu.New()
}
