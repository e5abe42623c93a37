// Copyright 2025 The Deep Dream Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/xdxdVSxdxd/deep-dream/internal/backend/cpu"
	"github.com/xdxdVSxdxd/deep-dream/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

// TestTensorAPI verifies the type aliases expose the expected API.
func TestTensorAPI(t *testing.T) {
	img, err := tensor.New(tensor.Shape{3, 4, 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !img.Shape().Equal(tensor.Shape{3, 4, 5}) {
		t.Errorf("Shape() = %v, want [3 4 5]", img.Shape())
	}
	if img.NumElements() != 60 {
		t.Errorf("NumElements() = %d, want 60", img.NumElements())
	}
	if len(img.Data()) != 60 {
		t.Errorf("len(Data()) = %d, want 60", len(img.Data()))
	}

	clone := img.Clone()
	clone.Data()[0] = 7
	if img.Data()[0] != 0 {
		t.Error("Clone() shares its buffer with the original")
	}
}

// TestFromSliceRejectsBadLength verifies length validation in FromSlice.
func TestFromSliceRejectsBadLength(t *testing.T) {
	if _, err := tensor.FromSlice(tensor.Shape{2, 2}, []float32{1, 2, 3}); err == nil {
		t.Error("FromSlice accepted mismatched data length")
	}
}

// TestDeviceString verifies device names.
func TestDeviceString(t *testing.T) {
	if got := tensor.CPU.String(); got != "CPU" {
		t.Errorf("CPU.String() = %q, want \"CPU\"", got)
	}
	if got := tensor.WebGPU.String(); got != "WebGPU" {
		t.Errorf("WebGPU.String() = %q, want \"WebGPU\"", got)
	}
}
