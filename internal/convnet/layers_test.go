package convnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdxdVSxdxd/deep-dream/internal/backend/cpu"
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

func onesKernel(t *testing.T) *tensor.Tensor {
	t.Helper()
	k, err := tensor.Full(tensor.Shape{1, 1, 2, 2}, 1)
	require.NoError(t, err)
	return k
}

func biasTensor(t *testing.T, values ...float32) *tensor.Tensor {
	t.Helper()
	b, err := tensor.FromSlice(tensor.Shape{len(values)}, values)
	require.NoError(t, err)
	return b
}

func TestConvLayer_ForwardBiasAndReLU(t *testing.T) {
	backend := cpu.New()

	// 2x2 all-ones kernel over 1..9: patch sums are 12, 16, 24, 28.
	// Bias -20 drops the first two below zero, where ReLU clips them.
	l := &convLayer{kernel: onesKernel(t), bias: biasTensor(t, -20), stride: 1, padding: 0}

	in, err := tensor.FromSlice(tensor.Shape{1, 3, 3}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)

	out := l.forward(backend, in)

	require.Equal(t, tensor.Shape{1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{0, 0, 4, 8}, out.Data())
}

func TestConvLayer_BackwardMasksClippedPositions(t *testing.T) {
	backend := cpu.New()
	l := &convLayer{kernel: onesKernel(t), bias: biasTensor(t, 0), stride: 1, padding: 0}

	// Activation zero in the first row: those gradient entries must not
	// flow back through the convolution.
	act, err := tensor.FromSlice(tensor.Shape{1, 2, 2}, []float32{0, 0, 4, 8})
	require.NoError(t, err)
	grad, err := tensor.Full(tensor.Shape{1, 2, 2}, 1)
	require.NoError(t, err)

	inputGrad := l.backward(backend, tensor.Shape{1, 3, 3}, act, grad)

	// Only the two bottom output windows contribute.
	assert.Equal(t, []float32{
		0, 0, 0,
		1, 2, 1,
		1, 2, 1,
	}, inputGrad.Data())

	// The live gradient buffer was masked in place.
	assert.Equal(t, []float32{0, 0, 1, 1}, grad.Data())
}

func TestPoolLayer_RoutesGradient(t *testing.T) {
	backend := cpu.New()
	l := &poolLayer{kernelSize: 2, stride: 2}

	in, err := tensor.FromSlice(tensor.Shape{1, 4, 4}, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	require.NoError(t, err)

	out := l.forward(backend, in)
	assert.Equal(t, []float32{6, 8, 14, 16}, out.Data())

	grad, err := tensor.FromSlice(tensor.Shape{1, 2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	inputGrad := l.backward(backend, tensor.Shape{1, 4, 4}, nil, grad)

	expected := make([]float32, 16)
	expected[5] = 1
	expected[7] = 2
	expected[13] = 3
	expected[15] = 4
	assert.Equal(t, expected, inputGrad.Data())
}
