// Package dream implements multiscale gradient-ascent image synthesis:
// an image is repeatedly nudged toward whatever maximizes a chosen
// layer of a convolutional network, across a pyramid of octaves from
// coarse to fine.
package dream

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"slices"

	"github.com/xdxdVSxdxd/deep-dream/internal/codec"
	"github.com/xdxdVSxdxd/deep-dream/internal/resample"
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// ErrUnknownLayer is returned when the requested objective layer does
// not exist in the network.
var ErrUnknownLayer = errors.New("dream: no such layer")

// Dreamer runs the ascent loop over a network.
type Dreamer struct {
	net Net
	cfg Config
}

// New creates a Dreamer over net, applying opts on top of
// DefaultConfig. The resulting configuration is the baseline for every
// run; Dream and DreamTensor accept further options per call.
func New(net Net, opts ...Option) (*Dreamer, error) {
	if net == nil {
		return nil, errors.New("dream: nil network")
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Dreamer{net: net, cfg: cfg}, nil
}

// Layers lists the network layers usable as objectives, in forward
// order.
func (d *Dreamer) Layers() []string {
	return d.net.Layers()
}

// Config returns the baseline configuration.
func (d *Dreamer) Config() Config {
	return d.cfg
}

// runConfig layers per-call options over the baseline configuration.
func (d *Dreamer) runConfig(opts []Option) (Config, error) {
	cfg := d.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Dream maximizes the end layer over img and returns the synthesized
// image. The input image is not modified. Options apply to this run
// only.
func (d *Dreamer) Dream(img image.Image, end string, opts ...Option) (*image.NRGBA, error) {
	cfg, err := d.runConfig(opts)
	if err != nil {
		return nil, err
	}
	co := codec.New(cfg.Mean)
	pre, err := co.Preprocess(codec.FromImage(img))
	if err != nil {
		return nil, err
	}
	out, err := d.dream(pre, end, cfg)
	if err != nil {
		return nil, err
	}
	return co.PostprocessImage(out)
}

// DreamTensor is Dream for images already held as a numeric array: an
// (H, W, 3) tensor with RGB values in [0, 255]. The input is not
// modified.
func (d *Dreamer) DreamTensor(hwc *tensor.Tensor, end string, opts ...Option) (*image.NRGBA, error) {
	cfg, err := d.runConfig(opts)
	if err != nil {
		return nil, err
	}
	co := codec.New(cfg.Mean)
	pre, err := co.Preprocess(hwc)
	if err != nil {
		return nil, err
	}
	out, err := d.dream(pre, end, cfg)
	if err != nil {
		return nil, err
	}
	return co.PostprocessImage(out)
}

func (d *Dreamer) dream(img *tensor.Tensor, end string, cfg Config) (*tensor.Tensor, error) {
	if !slices.Contains(d.net.Layers(), end) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, end)
	}

	d.net.ZeroGradients()

	// A fixed seed keeps the jitter sequence identical between runs,
	// so the same inputs dream the same image.
	rng := rand.New(rand.NewSource(0))

	tr := newTracker(cfg.meter())
	defer tr.close()

	detail, err := d.octaveDetail(img, end, cfg, cfg.Scale, rng, tr)
	if err != nil {
		return nil, err
	}
	return img.Add(detail), nil
}

// octaveDetail synthesizes the detail for one octave: it recurses to a
// 2^(1/PerOctave) smaller copy first, upsamples the detail dreamed
// there, and then ascends for Steps steps at this scale on top of it.
// The returned detail is the difference from the base image.
func (d *Dreamer) octaveDetail(base *tensor.Tensor, end string, cfg Config, scale int, rng *rand.Rand, tr *tracker) (*tensor.Tensor, error) {
	shape := base.Shape()
	h, w := shape[1], shape[2]
	tr.extend(h * w * cfg.Steps)

	var detail *tensor.Tensor
	if scale > 1 {
		factor := math.Pow(2, 1/float64(cfg.PerOctave))
		ch := int(math.Ceil(float64(h) / factor))
		cw := int(math.Ceil(float64(w) / factor))

		smallBase, err := resample.Resize(base, ch, cw)
		if err != nil {
			return nil, err
		}
		smallDetail, err := d.octaveDetail(smallBase, end, cfg, scale-1, rng, tr)
		if err != nil {
			return nil, err
		}
		detail, err = resample.Resize(smallDetail, h, w)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		detail, err = tensor.New(shape.Clone())
		if err != nil {
			return nil, err
		}
	}

	img := base.Add(detail)
	for i := 0; i < cfg.Steps; i++ {
		var err error
		img, err = d.ascentStep(img, end, cfg, rng, tr)
		if err != nil {
			return nil, err
		}
	}
	return img.Sub(base), nil
}
