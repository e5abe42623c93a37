// Package tensor provides the planar float32 tensors and the compute
// backend contract shared by the dream pipeline.
//
// Images travel through the pipeline channel-first: shape (C, H, W) with
// one flat float32 buffer in row-major order. Values may be negative
// (mean-subtracted network space), so tensors never round-trip through
// 8-bit image types internally.
package tensor

import "fmt"

// Tensor is a dense float32 array with a fixed shape.
//
// The data slice is owned by the tensor. Accessors hand out the live
// slice so hot loops can index it directly; callers that need an
// independent copy use Clone.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}, nil
}

// FromSlice creates a tensor with the given shape, copying data.
// The length of data must equal the number of elements in shape.
func FromSlice(shape Shape, data []float32) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t := &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, len(data)),
	}
	copy(t.data, data)
	return t, nil
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float32) (*Tensor, error) {
	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		t.data[i] = value
	}
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the live underlying buffer in row-major order.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Clone returns a deep copy with an independent buffer.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{
		shape: t.shape.Clone(),
		data:  make([]float32, len(t.data)),
	}
	copy(c.data, t.data)
	return c
}
