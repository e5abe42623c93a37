package dream

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdxdVSxdxd/deep-dream/internal/codec"
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// fakeNet mirrors its input: the end activation equals the input
// activation, so the gradient the dreamer reads back is the input tile
// itself. That makes every ascent quantity computable by hand.
type fakeNet struct {
	input   *tensor.Tensor
	inGrad  *tensor.Tensor
	out     *tensor.Tensor
	outGrad *tensor.Tensor

	tiles       []tensor.Shape
	forwardEnds []string
}

var _ Net = (*fakeNet)(nil)

func (f *fakeNet) InputLayer() string { return "data" }

func (f *fakeNet) Layers() []string { return []string{"data", "mirror/output"} }

func (f *fakeNet) SetInput(c, h, w int) {
	shape := tensor.Shape{c, h, w}
	f.input, _ = tensor.New(shape.Clone())
	f.inGrad, _ = tensor.New(shape.Clone())
	f.out, _ = tensor.New(shape.Clone())
	f.outGrad, _ = tensor.New(shape.Clone())
	f.tiles = append(f.tiles, shape)
}

func (f *fakeNet) Forward(end string) error {
	f.forwardEnds = append(f.forwardEnds, end)
	copy(f.out.Data(), f.input.Data())
	return nil
}

func (f *fakeNet) Backward(start string) error {
	copy(f.inGrad.Data(), f.outGrad.Data())
	return nil
}

func (f *fakeNet) Activation(layer string) *tensor.Tensor {
	switch layer {
	case "data":
		return f.input
	case "mirror/output":
		return f.out
	}
	panic("fakeNet: unknown layer " + layer)
}

func (f *fakeNet) SetActivation(layer string, t *tensor.Tensor) {
	copy(f.Activation(layer).Data(), t.Data())
}

func (f *fakeNet) Gradient(layer string) *tensor.Tensor {
	switch layer {
	case "data":
		return f.inGrad
	case "mirror/output":
		return f.outGrad
	}
	panic("fakeNet: unknown layer " + layer)
}

func (f *fakeNet) SetGradient(layer string, t *tensor.Tensor) {
	copy(f.Gradient(layer).Data(), t.Data())
}

func (f *fakeNet) ZeroGradients() {}

// deadNet is a fakeNet whose backward pass produces a zero gradient.
type deadNet struct {
	fakeNet
}

func (f *deadNet) Backward(start string) error {
	for i := range f.inGrad.Data() {
		f.inGrad.Data()[i] = 0
	}
	return nil
}

func rampTensor(t *testing.T, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(i%17) - 8
	}
	tn, err := tensor.FromSlice(shape, data)
	require.NoError(t, err)
	return tn
}

func TestGradTiled_IdentityCoversImage(t *testing.T) {
	net := &fakeNet{}
	d, err := New(net, WithProgress(nil))
	require.NoError(t, err)

	img := rampTensor(t, tensor.Shape{3, 13, 7})

	g, err := d.gradTiled(img, "mirror/output", 5, newTracker(nil))
	require.NoError(t, err)

	// The mirror gradient is the image itself, so an exact match means
	// every pixel was covered exactly once at the right offset.
	assert.Equal(t, img.Data(), g.Data())

	// 13 rows split into 3 tiles of 4, 4, 5; 7 columns into 2 of 3, 4.
	expectedTiles := []tensor.Shape{
		{3, 4, 3}, {3, 4, 4},
		{3, 4, 3}, {3, 4, 4},
		{3, 5, 3}, {3, 5, 4},
	}
	assert.Equal(t, expectedTiles, net.tiles)
}

func TestGradTiled_TilingMatchesWholeImage(t *testing.T) {
	img := rampTensor(t, tensor.Shape{3, 10, 11})

	d, err := New(&fakeNet{}, WithProgress(nil))
	require.NoError(t, err)

	gTiled, err := d.gradTiled(img, "mirror/output", 4, newTracker(nil))
	require.NoError(t, err)
	gWhole, err := d.gradTiled(img, "mirror/output", 512, newTracker(nil))
	require.NoError(t, err)

	assert.Equal(t, gWhole.Data(), gTiled.Data())
}

func TestDream_SingleOctaveStep(t *testing.T) {
	d, err := New(&fakeNet{},
		WithScale(1), WithSteps(1), WithJitter(0),
		WithStepSize(2), WithProgress(nil))
	require.NoError(t, err)

	img, err := tensor.FromSlice(tensor.Shape{1, 2, 2}, []float32{1, -2, 3, -4})
	require.NoError(t, err)

	out, err := d.dream(img, "mirror/output", d.cfg)
	require.NoError(t, err)

	// Gradient equals the image; |g| sorted is {1,2,3,4} with median
	// 2.5, so each value moves by 2*v/2.5.
	scale := float32(2) / 2.5
	expected := []float32{
		1 + scale*1, -2 + scale*-2, 3 + scale*3, -4 + scale*-4,
	}
	assert.Equal(t, expected, out.Data())
}

func TestDream_JitterRoundTrip(t *testing.T) {
	// With a zero step size the update is a no-op, so the roll, tile,
	// and unroll plumbing must return the image bit for bit.
	d, err := New(&fakeNet{},
		WithScale(1), WithSteps(3), WithJitter(5),
		WithStepSize(0), WithMaxTileSize(4), WithProgress(nil))
	require.NoError(t, err)

	img := rampTensor(t, tensor.Shape{3, 9, 7})
	out, err := d.dream(img, "mirror/output", d.cfg)
	require.NoError(t, err)

	assert.Equal(t, img.Data(), out.Data())
}

func TestDream_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]float32, 1*8*9)
	for i := range data {
		data[i] = rng.Float32()*200 - 100
	}
	img, err := tensor.FromSlice(tensor.Shape{1, 8, 9}, data)
	require.NoError(t, err)
	original := append([]float32(nil), img.Data()...)

	d, err := New(&fakeNet{},
		WithScale(3), WithSteps(2), WithJitter(3), WithProgress(nil))
	require.NoError(t, err)

	first, err := d.dream(img, "mirror/output", d.cfg)
	require.NoError(t, err)
	second, err := d.dream(img, "mirror/output", d.cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Data(), second.Data(), "repeated runs must agree exactly")
	assert.Equal(t, original, img.Data(), "input must not be modified")
}

func TestDream_ZeroGradientSaturates(t *testing.T) {
	d, err := New(&deadNet{},
		WithScale(1), WithSteps(1), WithJitter(0), WithProgress(nil))
	require.NoError(t, err)

	img, err := tensor.FromSlice(tensor.Shape{1, 2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	out, err := d.dream(img, "mirror/output", d.cfg)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(out.Data()[0])),
		"a zero gradient median divides to NaN rather than silently stalling")
}

func TestDream_ZeroSteps(t *testing.T) {
	d, err := New(&fakeNet{},
		WithScale(2), WithSteps(0), WithProgress(nil))
	require.NoError(t, err)

	img := rampTensor(t, tensor.Shape{3, 6, 6})
	out, err := d.dream(img, "mirror/output", d.cfg)
	require.NoError(t, err)

	assert.Equal(t, img.Data(), out.Data())
}

func TestDreamTensor_UnknownLayer(t *testing.T) {
	net := &fakeNet{}
	d, err := New(net, WithProgress(nil))
	require.NoError(t, err)

	img := rampTensor(t, tensor.Shape{4, 4, 3})
	_, err = d.DreamTensor(img, "inception_9z/output")
	require.ErrorIs(t, err, ErrUnknownLayer)
	assert.Empty(t, net.forwardEnds, "network must not run for an unknown layer")
}

func TestDreamTensor_RejectsBadShape(t *testing.T) {
	d, err := New(&fakeNet{}, WithProgress(nil))
	require.NoError(t, err)

	for _, shape := range []tensor.Shape{{4, 4}, {4, 4, 4}, {2, 4, 4, 3}} {
		img, err := tensor.New(shape)
		require.NoError(t, err)
		_, err = d.DreamTensor(img, "mirror/output")
		assert.Error(t, err, "shape %v", shape)
	}
}

func TestDreamTensor_MatchesDream(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 7, 4))
	hwc, err := tensor.New(tensor.Shape{4, 7, 3})
	require.NoError(t, err)
	data := hwc.Data()
	for y := 0; y < 4; y++ {
		for x := 0; x < 7; x++ {
			c := color.NRGBA{
				R: uint8(30*x + 5), G: uint8(55 * y), B: uint8(10 * (x + y)), A: 255,
			}
			src.SetNRGBA(x, y, c)
			p := (y*7 + x) * 3
			data[p] = float32(c.R)
			data[p+1] = float32(c.G)
			data[p+2] = float32(c.B)
		}
	}

	d, err := New(&fakeNet{},
		WithScale(2), WithSteps(2), WithJitter(1), WithProgress(nil))
	require.NoError(t, err)

	fromImage, err := d.Dream(src, "mirror/output")
	require.NoError(t, err)
	fromTensor, err := d.DreamTensor(hwc, "mirror/output")
	require.NoError(t, err)

	assert.Equal(t, fromImage.Pix, fromTensor.Pix,
		"both input representations must dream the same image")
}

func TestDream_PerCallOptions(t *testing.T) {
	d, err := New(&fakeNet{},
		WithScale(1), WithSteps(1), WithJitter(0),
		WithStepSize(0), WithProgress(nil))
	require.NoError(t, err)

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(60 * x), G: 120, B: uint8(60 * y), A: 255})
		}
	}

	// The baseline step size of zero leaves the image untouched.
	still, err := d.Dream(src, "mirror/output")
	require.NoError(t, err)
	assert.Equal(t, src.Pix, still.Pix)

	// A per-call step size overrides the baseline for one run only.
	moved, err := d.Dream(src, "mirror/output", WithStepSize(100))
	require.NoError(t, err)
	assert.NotEqual(t, src.Pix, moved.Pix)
	assert.Equal(t, float32(0), d.Config().StepSize, "baseline must not change")

	_, err = d.Dream(src, "mirror/output", WithScale(0))
	assert.Error(t, err, "per-call options are validated")
}

func TestDream_ImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 6, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			src.SetNRGBA(x, y, color.NRGBA{
				R: uint8(40 * x), G: uint8(50 * y), B: uint8(20 * (x + y)), A: 255,
			})
		}
	}

	d, err := New(&fakeNet{},
		WithScale(1), WithSteps(1), WithJitter(0),
		WithStepSize(100), WithProgress(nil))
	require.NoError(t, err)

	out, err := d.Dream(src, "mirror/output")
	require.NoError(t, err)

	require.Equal(t, src.Bounds().Dx(), out.Bounds().Dx())
	require.Equal(t, src.Bounds().Dy(), out.Bounds().Dy())

	changed := false
	for y := 0; y < 5 && !changed; y++ {
		for x := 0; x < 6; x++ {
			if out.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				changed = true
				break
			}
		}
	}
	assert.True(t, changed, "a large ascent step must visibly change the image")
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
	}{
		{"zero scale", []Option{WithScale(0)}},
		{"negative steps", []Option{WithSteps(-1)}},
		{"zero per-octave", []Option{WithPerOctave(0)}},
		{"negative jitter", []Option{WithJitter(-1)}},
		{"zero tile size", []Option{WithMaxTileSize(0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(&fakeNet{}, tc.opts...)
			assert.Error(t, err)
		})
	}

	_, err := New(nil)
	assert.Error(t, err, "nil network")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 4, cfg.Scale)
	assert.Equal(t, 10, cfg.Steps)
	assert.Equal(t, 2, cfg.PerOctave)
	assert.Equal(t, float32(1.5), cfg.StepSize)
	assert.Equal(t, 32, cfg.Jitter)
	assert.Equal(t, 512, cfg.MaxTileSize)
	assert.NotNil(t, cfg.Progress)
	assert.Equal(t, codec.DefaultMean, cfg.Mean)
}

func TestMedianAbs(t *testing.T) {
	assert.Equal(t, float32(2), medianAbs([]float32{3, -1, 2}))
	assert.Equal(t, float32(2.5), medianAbs([]float32{1, -2, 3, -4}))
	assert.Equal(t, float32(5), medianAbs([]float32{-5}))
	assert.Equal(t, float32(0), medianAbs([]float32{0, 0, 0, 0}))
}
