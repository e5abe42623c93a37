package convnet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
	"github.com/xdxdVSxdxd/deep-dream/internal/weights"
)

func TestSaveLoadWeights_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.drwt")

	src, err := New(Config{Device: tensor.CPU, Seed: 1})
	require.NoError(t, err)
	require.NoError(t, src.SaveWeights(path))

	dst, err := New(Config{Device: tensor.CPU, Seed: 2})
	require.NoError(t, err)
	require.NoError(t, dst.LoadWeights(path))

	srcParams := src.Parameters()
	for name, dstParam := range dst.Parameters() {
		assert.Equal(t, srcParams[name].Data(), dstParam.Data(), "parameter %s", name)
	}

	// Identical weights produce identical activations.
	in := make([]float32, 3*16*16)
	for i := range in {
		in[i] = float32(i%11) - 5
	}
	for _, n := range []*Network{src, dst} {
		n.SetInput(3, 16, 16)
		copy(n.Activation("data").Data(), in)
		require.NoError(t, n.Forward("conv2/3x3"))
	}
	assert.Equal(t, src.Activation("conv2/3x3").Data(), dst.Activation("conv2/3x3").Data())
}

func TestSaveWeights_Deterministic(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.drwt")
	pathB := filepath.Join(dir, "b.drwt")

	for _, path := range []string{pathA, pathB} {
		n, err := New(Config{Device: tensor.CPU, Seed: 5})
		require.NoError(t, err)
		require.NoError(t, n.SaveWeights(path))
	}

	a, err := os.ReadFile(pathA)
	require.NoError(t, err)
	b, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoadWeights_RejectsWrongParameterSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.drwt")

	n, err := New(DefaultConfig())
	require.NoError(t, err)

	partial := map[string]*tensor.Tensor{
		"conv1/7x7_s2.weight": n.Parameters()["conv1/7x7_s2.weight"],
	}
	require.NoError(t, weights.WriteFile(path, partial, nil))

	err = n.LoadWeights(path)
	assert.ErrorContains(t, err, "tensors")
}

func TestLoadWeights_RejectsShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reshaped.drwt")

	n, err := New(DefaultConfig())
	require.NoError(t, err)

	params := n.Parameters()
	bad, err := tensor.New(tensor.Shape{1})
	require.NoError(t, err)
	params["conv1/7x7_s2.bias"] = bad
	require.NoError(t, weights.WriteFile(path, params, nil))

	err = n.LoadWeights(path)
	assert.ErrorContains(t, err, "shape")
}

func TestLoadWeights_MissingFile(t *testing.T) {
	n, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.Error(t, n.LoadWeights(filepath.Join(t.TempDir(), "absent.drwt")))
}
