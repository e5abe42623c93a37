package tensor

import "fmt"

// Add returns the element-wise sum t + other as a new tensor.
// Panics if the shapes differ.
func (t *Tensor) Add(other *Tensor) *Tensor {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("add: shape mismatch: %v vs %v", t.shape, other.shape))
	}
	out := t.Clone()
	dst := out.data
	src := other.data
	for i := range dst {
		dst[i] += src[i]
	}
	return out
}

// Sub returns the element-wise difference t - other as a new tensor.
// Panics if the shapes differ.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("sub: shape mismatch: %v vs %v", t.shape, other.shape))
	}
	out := t.Clone()
	dst := out.data
	src := other.data
	for i := range dst {
		dst[i] -= src[i]
	}
	return out
}
