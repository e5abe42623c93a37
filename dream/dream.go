// Copyright 2025 The Deep Dream Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dream provides the public API for multiscale gradient-ascent
// image synthesis.
//
// A Dreamer wraps any network that satisfies the Net contract and
// amplifies whatever the chosen layer responds to in an input image.
// The loop runs the image through the network, feeds the layer's own
// activation back as its gradient, and ascends the input a small step
// at a time, across a pyramid of octaves from coarse to fine. Large
// images are processed in jittered tiles so memory stays bounded.
//
// Example:
//
//	net, err := convnet.New(convnet.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer net.Close()
//
//	d, err := dream.New(net, dream.WithScale(4), dream.WithSteps(10))
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := d.Dream(img, "inception_4c/output")
package dream

import (
	"io"

	"github.com/xdxdVSxdxd/deep-dream/internal/dream"
)

// ErrUnknownLayer is returned when the requested end layer does not
// exist in the wrapped network.
var ErrUnknownLayer = dream.ErrUnknownLayer

// Net is the network contract a Dreamer drives: named layers, forward
// and backward passes, and access to live activation and gradient
// buffers.
type Net = dream.Net

// Config holds the knobs of the dream loop. Construct one through
// DefaultConfig and the With* options rather than by hand.
type Config = dream.Config

// Option adjusts a Config, either for the lifetime of a Dreamer when
// passed to New or for a single run when passed to Dream or
// DreamTensor.
type Option = dream.Option

// Meter receives pixel-level progress while a dream runs.
type Meter = dream.Meter

// Dreamer runs the multiscale gradient-ascent loop over a network.
type Dreamer = dream.Dreamer

// DefaultConfig returns the standard dream parameters: 4 octaves, 10
// steps per octave, 2 octaves per doubling, step size 1.5, 32 px
// jitter, 512 px tiles, progress on stderr.
func DefaultConfig() Config {
	return dream.DefaultConfig()
}

// New creates a Dreamer over net with the given options applied on top
// of DefaultConfig. The result is the baseline for every run; Dream
// and DreamTensor take further options that apply to one call only.
//
// Example:
//
//	d, err := dream.New(net,
//		dream.WithScale(6),
//		dream.WithStepSize(1.0),
//		dream.WithProgress(io.Discard),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := d.Dream(img, "inception_3b/output", dream.WithSteps(20))
func New(net Net, opts ...Option) (*Dreamer, error) {
	return dream.New(net, opts...)
}

// WithScale sets the number of octaves (image scales) to process.
func WithScale(scale int) Option {
	return dream.WithScale(scale)
}

// WithSteps sets the number of ascent steps per octave.
func WithSteps(n int) Option {
	return dream.WithSteps(n)
}

// WithPerOctave sets how many octaves span one doubling of image size.
func WithPerOctave(n int) Option {
	return dream.WithPerOctave(n)
}

// WithStepSize sets the ascent step size in median-gradient units.
func WithStepSize(size float32) Option {
	return dream.WithStepSize(size)
}

// WithJitter sets the maximum random shift, in pixels, applied before
// each step to hide tile seams.
func WithJitter(px int) Option {
	return dream.WithJitter(px)
}

// WithMaxTileSize bounds the height and width of a single tile.
func WithMaxTileSize(px int) Option {
	return dream.WithMaxTileSize(px)
}

// WithProgress directs the built-in console meter to w. Pass
// io.Discard to silence progress output.
func WithProgress(w io.Writer) Option {
	return dream.WithProgress(w)
}

// WithMeter installs a custom progress Meter, replacing the console
// meter.
func WithMeter(m Meter) Option {
	return dream.WithMeter(m)
}

// WithMean sets the per-channel BGR mean subtracted during image
// preprocessing.
func WithMean(mean [3]float32) Option {
	return dream.WithMean(mean)
}
