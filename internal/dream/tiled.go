package dream

import (
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// gradTiled computes the objective gradient of img with respect to the
// input, feeding the network one tile at a time so images larger than
// MaxTileSize fit through it. The objective is the L2 norm of the end
// layer, whose gradient is the end activation itself.
//
// Tiles partition the image exactly: edges of length L split into
// ceil(L/MaxTileSize) spans of L/n pixels, with the remainder folded
// into the last span.
func (d *Dreamer) gradTiled(img *tensor.Tensor, end string, mts int, tr *tracker) (*tensor.Tensor, error) {
	shape := img.Shape()
	c, h, w := shape[0], shape[1], shape[2]
	ny := (h-1)/mts + 1
	nx := (w-1)/mts + 1

	g, err := tensor.New(shape.Clone())
	if err != nil {
		return nil, err
	}
	input := d.net.InputLayer()

	for y := 0; y < ny; y++ {
		th := h / ny
		if y == ny-1 {
			th += h - th*ny
		}
		sy := (h / ny) * y
		for x := 0; x < nx; x++ {
			tw := w / nx
			if x == nx-1 {
				tw += w - tw*nx
			}
			sx := (w / nx) * x

			tile, err := tensor.New(tensor.Shape{c, th, tw})
			if err != nil {
				return nil, err
			}
			extractTile(tile.Data(), img, sy, sx, th, tw)
			d.net.SetInput(c, th, tw)
			d.net.SetActivation(input, tile)
			if err := d.net.Forward(end); err != nil {
				return nil, err
			}

			// Seed the objective gradient with the activation and pull
			// the gradient back to the input.
			d.net.SetGradient(end, d.net.Activation(end))
			if err := d.net.Backward(end); err != nil {
				return nil, err
			}

			insertTile(g, d.net.Gradient(input).Data(), sy, sx, th, tw)
			tr.add(th * tw)
		}
	}
	return g, nil
}

// extractTile copies the th x tw window at (sy, sx) of every channel of
// src into dst, which must hold C*th*tw elements.
func extractTile(dst []float32, src *tensor.Tensor, sy, sx, th, tw int) {
	shape := src.Shape()
	c, h, w := shape[0], shape[1], shape[2]
	data := src.Data()
	for ch := 0; ch < c; ch++ {
		chanOff := ch * h * w
		dstOff := ch * th * tw
		for row := 0; row < th; row++ {
			srcRow := chanOff + (sy+row)*w + sx
			copy(dst[dstOff+row*tw:dstOff+(row+1)*tw], data[srcRow:srcRow+tw])
		}
	}
}

// insertTile copies src, holding C*th*tw elements, into the th x tw
// window at (sy, sx) of every channel of dst.
func insertTile(dst *tensor.Tensor, src []float32, sy, sx, th, tw int) {
	shape := dst.Shape()
	c, h, w := shape[0], shape[1], shape[2]
	data := dst.Data()
	for ch := 0; ch < c; ch++ {
		chanOff := ch * h * w
		srcOff := ch * th * tw
		for row := 0; row < th; row++ {
			dstRow := chanOff + (sy+row)*w + sx
			copy(data[dstRow:dstRow+tw], src[srcOff+row*tw:srcOff+(row+1)*tw])
		}
	}
}
