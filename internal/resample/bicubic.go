// Package resample resizes channel-first float32 image planes with
// bicubic interpolation.
//
// The resampler matches the classic imaging-library semantics for
// 32-bit float planes: cubic convolution with a = -0.5, filter support
// widened by the scale factor when downscaling (antialiasing), tap
// windows clamped to the plane with weights renormalized to sum 1, and
// float64 accumulation per output sample. Values pass through unchanged
// in range, so mean-subtracted (negative) planes are safe.
package resample

import (
	"errors"
	"fmt"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// ErrInvalidShape reports a resize request on anything other than a
// 3-dimensional (C, H, W) tensor.
var ErrInvalidShape = errors.New("resample: tensor must be 3-dimensional (C, H, W)")

// bicubicSupport is the half-width of the cubic convolution kernel.
const bicubicSupport = 2.0

// bicubicFilter is the cubic convolution kernel with a = -0.5.
func bicubicFilter(x float64) float64 {
	const a = -0.5
	if x < 0 {
		x = -x
	}
	if x < 1 {
		return ((a+2)*x-(a+3))*x*x + 1
	}
	if x < 2 {
		return (((x-5)*x+8)*x - 4) * a
	}
	return 0
}

// filterTap holds the precomputed kernel window for one output sample:
// source index of the first tap and the normalized weights.
type filterTap struct {
	first   int
	weights []float64
}

// precomputeCoeffs builds the tap windows mapping inSize source samples
// to outSize output samples along one axis.
func precomputeCoeffs(inSize, outSize int) []filterTap {
	scale := float64(inSize) / float64(outSize)
	filterscale := scale
	if filterscale < 1 {
		filterscale = 1
	}
	support := bicubicSupport * filterscale
	ss := 1 / filterscale

	taps := make([]filterTap, outSize)
	for xx := 0; xx < outSize; xx++ {
		center := (float64(xx) + 0.5) * scale

		xmin := int(center - support + 0.5)
		if xmin < 0 {
			xmin = 0
		}
		xmax := int(center + support + 0.5)
		if xmax > inSize {
			xmax = inSize
		}

		weights := make([]float64, xmax-xmin)
		var ww float64
		for x := range weights {
			w := bicubicFilter((float64(x+xmin) - center + 0.5) * ss)
			weights[x] = w
			ww += w
		}
		if ww != 0 {
			for x := range weights {
				weights[x] /= ww
			}
		}
		taps[xx] = filterTap{first: xmin, weights: weights}
	}
	return taps
}

// Resize scales a (C, H, W) tensor to (C, height, width), resampling
// every channel plane independently. The input is never mutated.
//
// Returns ErrInvalidShape if t is not 3-dimensional.
func Resize(t *tensor.Tensor, height, width int) (*tensor.Tensor, error) {
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: got shape %v", ErrInvalidShape, shape)
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("resample: invalid target size %dx%d", height, width)
	}

	channels, h, w := shape[0], shape[1], shape[2]
	if height == h && width == w {
		return t.Clone(), nil
	}

	horiz := precomputeCoeffs(w, width)
	vert := precomputeCoeffs(h, height)

	out, err := tensor.New(tensor.Shape{channels, height, width})
	if err != nil {
		return nil, err
	}

	// Scratch for one horizontally-resampled channel plane (h, width)
	// and one float64 accumulator row for the vertical pass.
	temp := make([]float32, h*width)
	acc := make([]float64, width)

	src := t.Data()
	dst := out.Data()

	for ch := 0; ch < channels; ch++ {
		plane := src[ch*h*w : (ch+1)*h*w]

		// Horizontal pass: (h, w) -> (h, width).
		for row := 0; row < h; row++ {
			srcRow := plane[row*w : row*w+w]
			dstRow := temp[row*width : row*width+width]
			for o := range horiz {
				tap := &horiz[o]
				var sum float64
				for i, wt := range tap.weights {
					sum += float64(srcRow[tap.first+i]) * wt
				}
				dstRow[o] = float32(sum)
			}
		}

		// Vertical pass: (h, width) -> (height, width).
		outPlane := dst[ch*height*width : (ch+1)*height*width]
		for o := range vert {
			tap := &vert[o]
			for x := range acc {
				acc[x] = 0
			}
			for i, wt := range tap.weights {
				tempRow := temp[(tap.first+i)*width : (tap.first+i)*width+width]
				for x, v := range tempRow {
					acc[x] += float64(v) * wt
				}
			}
			dstRow := outPlane[o*width : o*width+width]
			for x, v := range acc {
				dstRow[x] = float32(v)
			}
		}
	}
	return out, nil
}
