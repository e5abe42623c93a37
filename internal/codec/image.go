package codec

import (
	"fmt"
	"image"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// FromImage converts a raster image into an (H, W, 3) float tensor with
// RGB values in [0, 255]. Alpha is discarded.
func FromImage(img image.Image) *tensor.Tensor {
	bounds := img.Bounds()
	h := bounds.Dy()
	w := bounds.Dx()

	out, err := tensor.New(tensor.Shape{h, w, 3})
	if err != nil {
		panic(fmt.Sprintf("codec: image bounds %v: %v", bounds, err))
	}

	data := out.Data()
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data[i] = float32(r >> 8)
			data[i+1] = float32(g >> 8)
			data[i+2] = float32(b >> 8)
			i += 3
		}
	}
	return out
}

// ToImage converts an (H, W, 3) tensor into an 8-bit RGB image,
// rounding each value to the nearest integer and clipping to [0, 255].
func ToImage(hwc *tensor.Tensor) (*image.NRGBA, error) {
	shape := hwc.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		return nil, fmt.Errorf("codec: to image expects (H, W, 3) tensor, got shape %v", shape)
	}
	h, w := shape[0], shape[1]

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := hwc.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := y*img.Stride + x*4
			p := (y*w + x) * 3
			img.Pix[o] = clampRound(src[p])
			img.Pix[o+1] = clampRound(src[p+1])
			img.Pix[o+2] = clampRound(src[p+2])
			img.Pix[o+3] = 255
		}
	}
	return img, nil
}

// PostprocessImage runs Postprocess and converts the result to an
// 8-bit RGB image in one step.
func (c *Codec) PostprocessImage(chw *tensor.Tensor) (*image.NRGBA, error) {
	hwc, err := c.Postprocess(chw)
	if err != nil {
		return nil, err
	}
	return ToImage(hwc)
}
