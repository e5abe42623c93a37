package resample

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

func TestResize_InvalidShape(t *testing.T) {
	flat, err := tensor.New(tensor.Shape{6})
	require.NoError(t, err)
	_, err = Resize(flat, 2, 3)
	assert.True(t, errors.Is(err, ErrInvalidShape), "expected ErrInvalidShape, got %v", err)

	nchw, err := tensor.New(tensor.Shape{1, 3, 4, 4})
	require.NoError(t, err)
	_, err = Resize(nchw, 2, 2)
	assert.True(t, errors.Is(err, ErrInvalidShape))
}

func TestResize_InvalidTarget(t *testing.T) {
	tn, err := tensor.New(tensor.Shape{3, 4, 4})
	require.NoError(t, err)

	_, err = Resize(tn, 0, 4)
	assert.Error(t, err)
	_, err = Resize(tn, 4, -1)
	assert.Error(t, err)
}

func TestResize_SameSizeIsIdentity(t *testing.T) {
	data := make([]float32, 3*5*7)
	for i := range data {
		data[i] = float32(i)*0.37 - 60 // includes negative values
	}
	tn, err := tensor.FromSlice(tensor.Shape{3, 5, 7}, data)
	require.NoError(t, err)

	out, err := Resize(tn, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, tn.Data(), out.Data())

	// Output is an independent copy.
	out.Data()[0] = 999
	assert.Equal(t, data[0], tn.Data()[0])
}

func TestResize_TargetDimensions(t *testing.T) {
	tn, err := tensor.New(tensor.Shape{3, 10, 17})
	require.NoError(t, err)

	cases := [][2]int{{5, 8}, {7, 12}, {20, 34}, {13, 3}, {1, 1}}
	for _, c := range cases {
		out, err := Resize(tn, c[0], c[1])
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{3, c[0], c[1]}, out.Shape(), "target %v", c)
	}
}

func TestResize_ConstantPlanePreserved(t *testing.T) {
	// Normalized tap weights must keep constant regions constant,
	// including negative (mean-subtracted) levels.
	for _, level := range []float32{0, 128, -103.939, 251.5} {
		tn, err := tensor.Full(tensor.Shape{3, 9, 13}, level)
		require.NoError(t, err)

		for _, target := range [][2]int{{4, 7}, {18, 26}, {9, 40}} {
			out, err := Resize(tn, target[0], target[1])
			require.NoError(t, err)
			for i, v := range out.Data() {
				require.InDelta(t, level, v, 1e-3, "level %v target %v element %d", level, target, i)
			}
		}
	}
}

func TestResize_LinearRampInterior(t *testing.T) {
	// Cubic convolution with a=-0.5 reproduces linear signals exactly
	// where the tap window does not clamp at the plane border.
	ramp := make([]float32, 8)
	for i := range ramp {
		ramp[i] = float32(i)
	}
	tn, err := tensor.FromSlice(tensor.Shape{1, 1, 8}, ramp)
	require.NoError(t, err)

	out, err := Resize(tn, 1, 16)
	require.NoError(t, err)

	scale := 8.0 / 16.0
	for o := 4; o <= 11; o++ {
		want := (float64(o)+0.5)*scale - 0.5
		assert.InDelta(t, want, float64(out.Data()[o]), 1e-5, "output column %d", o)
	}
}

func TestResize_DoesNotMutateInput(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	tn, err := tensor.FromSlice(tensor.Shape{1, 3, 4}, data)
	require.NoError(t, err)

	_, err = Resize(tn, 6, 8)
	require.NoError(t, err)
	assert.Equal(t, data, tn.Data())
}
