package dream

import (
	"fmt"
	"io"
	"os"

	"github.com/xdxdVSxdxd/deep-dream/internal/codec"
)

// Config holds the parameters of a dream run.
type Config struct {
	// Scale is the number of octaves. Each octave past the first
	// shrinks the image by 2^(1/PerOctave) before ascending, so detail
	// is grown from coarse to fine.
	Scale int

	// Steps is the number of gradient-ascent steps per octave.
	Steps int

	// PerOctave is the number of octaves per halving of resolution.
	PerOctave int

	// StepSize scales each ascent update after gradient normalization.
	StepSize float32

	// Jitter is the maximum magnitude of the random shift applied
	// before each step. Shifting moves tile seams around so they
	// average out across steps.
	Jitter int

	// MaxTileSize caps the tile edge length fed through the network.
	MaxTileSize int

	// Progress receives a console progress meter. Nil disables it.
	Progress io.Writer

	// Meter overrides Progress with a custom progress sink.
	Meter Meter

	// Mean is the per-channel mean, in BGR order, subtracted from
	// images on the way into the network.
	Mean [3]float32
}

// DefaultConfig returns the standard dreaming parameters.
func DefaultConfig() Config {
	return Config{
		Scale:       4,
		Steps:       10,
		PerOctave:   2,
		StepSize:    1.5,
		Jitter:      32,
		MaxTileSize: 512,
		Progress:    os.Stderr,
		Mean:        codec.DefaultMean,
	}
}

func (c Config) validate() error {
	if c.Scale < 1 {
		return fmt.Errorf("dream: scale must be at least 1, got %d", c.Scale)
	}
	if c.Steps < 0 {
		return fmt.Errorf("dream: steps must be non-negative, got %d", c.Steps)
	}
	if c.PerOctave < 1 {
		return fmt.Errorf("dream: per-octave count must be at least 1, got %d", c.PerOctave)
	}
	if c.Jitter < 0 {
		return fmt.Errorf("dream: jitter must be non-negative, got %d", c.Jitter)
	}
	if c.MaxTileSize < 1 {
		return fmt.Errorf("dream: max tile size must be at least 1, got %d", c.MaxTileSize)
	}
	return nil
}

// Option adjusts a Config.
type Option func(*Config)

// WithScale sets the number of octaves.
func WithScale(scale int) Option {
	return func(c *Config) { c.Scale = scale }
}

// WithSteps sets the number of ascent steps per octave.
func WithSteps(n int) Option {
	return func(c *Config) { c.Steps = n }
}

// WithPerOctave sets the number of octaves per halving of resolution.
func WithPerOctave(n int) Option {
	return func(c *Config) { c.PerOctave = n }
}

// WithStepSize sets the ascent step size.
func WithStepSize(size float32) Option {
	return func(c *Config) { c.StepSize = size }
}

// WithJitter sets the maximum random shift in pixels.
func WithJitter(px int) Option {
	return func(c *Config) { c.Jitter = px }
}

// WithMaxTileSize sets the maximum tile edge length.
func WithMaxTileSize(px int) Option {
	return func(c *Config) { c.MaxTileSize = px }
}

// WithProgress directs the console progress meter to w. Passing nil
// disables progress output.
func WithProgress(w io.Writer) Option {
	return func(c *Config) { c.Progress = w }
}

// WithMeter installs a custom progress sink in place of the console
// meter.
func WithMeter(m Meter) Option {
	return func(c *Config) { c.Meter = m }
}

// WithMean sets the per-channel mean (BGR) subtracted during
// preprocessing.
func WithMean(mean [3]float32) Option {
	return func(c *Config) { c.Mean = mean }
}
