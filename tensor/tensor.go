// Copyright 2025 The Deep Dream Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the float32 tensors that
// flow through the dream pipeline.
//
// Tensors are dense, channel-first arrays: an image is shape (C, H, W)
// backed by one flat float32 buffer in row-major order. Key properties:
//
//   - Values live in mean-subtracted network space and may be negative
//   - Data accessors return the live buffer, not a copy
//   - Compute runs through a pluggable Backend (CPU or WebGPU)
//
// Example:
//
//	img, err := tensor.New(tensor.Shape{3, 224, 224})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(img.Shape())       // (3, 224, 224)
//	fmt.Println(img.NumElements()) // 150528
package tensor

import (
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// Tensor is a dense float32 array with a fixed shape.
type Tensor = tensor.Tensor

// Shape describes tensor dimensions, outermost first.
type Shape = tensor.Shape

// Device identifies the compute device a backend runs on.
type Device = tensor.Device

// Supported compute devices.
const (
	CPU    = tensor.CPU
	WebGPU = tensor.WebGPU
)

// Backend is the contract compute backends implement: convolution and
// max-pooling, forward and backward, on channel-first tensors.
type Backend = tensor.Backend

// New creates a zero-filled tensor with the given shape.
//
// Example:
//
//	t, err := tensor.New(tensor.Shape{3, 32, 32})
//	if err != nil {
//		log.Fatal(err)
//	}
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// FromSlice creates a tensor with the given shape, copying data.
// The length of data must equal the number of elements in shape.
//
// Example:
//
//	t, err := tensor.FromSlice(tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
//	if err != nil {
//		log.Fatal(err)
//	}
func FromSlice(shape Shape, data []float32) (*Tensor, error) {
	return tensor.FromSlice(shape, data)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float32) (*Tensor, error) {
	return tensor.Full(shape, value)
}
