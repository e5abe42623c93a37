package convnet

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// op is a layer computation over the backend primitives.
type op interface {
	// forward computes the layer activation from the input activation.
	forward(b tensor.Backend, in *tensor.Tensor) *tensor.Tensor
	// backward maps the gradient at this layer's output to a gradient
	// at its input. It may modify grad in place.
	backward(b tensor.Backend, inShape tensor.Shape, act, grad *tensor.Tensor) *tensor.Tensor
}

// convLayer is a convolution with per-channel bias and a fused ReLU.
type convLayer struct {
	kernel  *tensor.Tensor // [C_out, C_in, KH, KW]
	bias    *tensor.Tensor // [C_out]
	stride  int
	padding int
}

// newConvLayer builds a convolution with Kaiming-scaled weights drawn
// from rng and zero biases.
func newConvLayer(rng *rand.Rand, in, out, kernel, stride, padding int) *convLayer {
	k, err := tensor.New(tensor.Shape{out, in, kernel, kernel})
	if err != nil {
		panic(fmt.Sprintf("convnet: conv kernel shape: %v", err))
	}
	scale := math.Sqrt(2 / float64(in*kernel*kernel))
	data := k.Data()
	for i := range data {
		data[i] = float32(rng.NormFloat64() * scale)
	}
	b, err := tensor.New(tensor.Shape{out})
	if err != nil {
		panic(fmt.Sprintf("convnet: conv bias shape: %v", err))
	}
	return &convLayer{
		kernel:  k,
		bias:    b,
		stride:  stride,
		padding: padding,
	}
}

func (l *convLayer) forward(b tensor.Backend, in *tensor.Tensor) *tensor.Tensor {
	out := b.Conv2D(in, l.kernel, l.stride, l.padding)
	shape := out.Shape()
	plane := shape[1] * shape[2]
	data := out.Data()
	biases := l.bias.Data()
	for c := 0; c < shape[0]; c++ {
		bias := biases[c]
		row := data[c*plane : (c+1)*plane]
		for i, v := range row {
			v += bias
			if v < 0 {
				v = 0
			}
			row[i] = v
		}
	}
	return out
}

func (l *convLayer) backward(b tensor.Backend, inShape tensor.Shape, act, grad *tensor.Tensor) *tensor.Tensor {
	// The ReLU clipped every position whose activation is zero, so no
	// gradient flows there.
	gd := grad.Data()
	for i, a := range act.Data() {
		if a <= 0 {
			gd[i] = 0
		}
	}
	return b.Conv2DInputBackward(inShape, l.kernel, grad, l.stride, l.padding)
}

// poolLayer is max pooling. The forward pass records which input
// position won each window so backward can route gradients there.
type poolLayer struct {
	kernelSize int
	stride     int
	indices    []int
}

func (l *poolLayer) forward(b tensor.Backend, in *tensor.Tensor) *tensor.Tensor {
	out, indices := b.MaxPool2D(in, l.kernelSize, l.stride)
	l.indices = indices
	return out
}

func (l *poolLayer) backward(b tensor.Backend, inShape tensor.Shape, act, grad *tensor.Tensor) *tensor.Tensor {
	return b.MaxPool2DBackward(inShape, grad, l.indices)
}
