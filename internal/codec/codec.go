// Package codec converts between raster images and the network's input
// tensor space.
//
// Preprocessing follows the convention of Caffe-era BVLC models:
// height-width-channel pixels in [0, 255] become channel-first planes,
// the channel order is reversed (RGB to BGR), and a fixed per-channel
// training mean is subtracted. Postprocessing is the exact inverse,
// with a final clip-round-cast step when an 8-bit image is requested.
package codec

import (
	"fmt"
	"math"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// DefaultMean is the per-channel training mean of bvlc_googlenet in
// network (BGR) channel order.
var DefaultMean = [3]float32{103.939, 116.779, 123.68}

// Codec translates images to and from network input space for one
// fixed per-channel mean.
type Codec struct {
	mean [3]float32
}

// New creates a Codec with the given per-channel mean, indexed in
// network (BGR) channel order.
func New(mean [3]float32) *Codec {
	return &Codec{mean: mean}
}

// Mean returns the codec's per-channel mean in network channel order.
func (c *Codec) Mean() [3]float32 {
	return c.mean
}

// Preprocess converts an (H, W, 3) tensor with RGB values in [0, 255]
// into a network input tensor: shape (3, H, W), channels reversed to
// BGR, mean subtracted. The input is not mutated.
func (c *Codec) Preprocess(hwc *tensor.Tensor) (*tensor.Tensor, error) {
	shape := hwc.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		return nil, fmt.Errorf("codec: preprocess expects (H, W, 3) tensor, got shape %v", shape)
	}
	h, w := shape[0], shape[1]

	out, err := tensor.New(tensor.Shape{3, h, w})
	if err != nil {
		return nil, err
	}

	src := hwc.Data()
	dst := out.Data()
	for ch := 0; ch < 3; ch++ {
		mean := c.mean[ch]
		rgb := 2 - ch // network channel 0 is blue
		plane := dst[ch*h*w : (ch+1)*h*w]
		for y := 0; y < h; y++ {
			row := src[y*w*3 : (y+1)*w*3]
			for x := 0; x < w; x++ {
				plane[y*w+x] = row[x*3+rgb] - mean
			}
		}
	}
	return out, nil
}

// Postprocess converts a network input tensor (3, H, W) back into an
// (H, W, 3) RGB tensor by adding the mean and undoing the channel
// reversal. Values are not clipped; use ToImage or PostprocessImage to
// produce an 8-bit raster.
func (c *Codec) Postprocess(chw *tensor.Tensor) (*tensor.Tensor, error) {
	shape := chw.Shape()
	if len(shape) != 3 || shape[0] != 3 {
		return nil, fmt.Errorf("codec: postprocess expects (3, H, W) tensor, got shape %v", shape)
	}
	h, w := shape[1], shape[2]

	out, err := tensor.New(tensor.Shape{h, w, 3})
	if err != nil {
		return nil, err
	}

	src := chw.Data()
	dst := out.Data()
	for ch := 0; ch < 3; ch++ {
		mean := c.mean[ch]
		rgb := 2 - ch
		plane := src[ch*h*w : (ch+1)*h*w]
		for y := 0; y < h; y++ {
			row := dst[y*w*3 : (y+1)*w*3]
			for x := 0; x < w; x++ {
				row[x*3+rgb] = plane[y*w+x] + mean
			}
		}
	}
	return out, nil
}

// clampRound maps a float pixel to 8 bits: round to nearest with ties
// to even, then clip to [0, 255]. NaN clips to 0.
func clampRound(v float32) uint8 {
	r := math.RoundToEven(float64(v))
	if !(r > 0) {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
