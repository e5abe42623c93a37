package tensor

import "fmt"

// RollHW returns a copy of a (C, H, W) tensor cyclically shifted by dy
// rows and dx columns. Positive shifts move content toward higher
// indices and wrap around; RollHW(-dy, -dx) restores the original.
// Panics if the tensor is not 3-dimensional.
func (t *Tensor) RollHW(dy, dx int) *Tensor {
	if len(t.shape) != 3 {
		panic(fmt.Sprintf("rollhw: expected 3D tensor (C,H,W), got shape %v", t.shape))
	}

	channels := t.shape[0]
	h := t.shape[1]
	w := t.shape[2]

	// Normalize shifts to [0, dim).
	dy = ((dy % h) + h) % h
	dx = ((dx % w) + w) % w

	out := &Tensor{
		shape: t.shape.Clone(),
		data:  make([]float32, len(t.data)),
	}

	for c := 0; c < channels; c++ {
		plane := t.data[c*h*w : (c+1)*h*w]
		outPlane := out.data[c*h*w : (c+1)*h*w]
		for row := 0; row < h; row++ {
			srcRow := row - dy
			if srcRow < 0 {
				srcRow += h
			}
			src := plane[srcRow*w : srcRow*w+w]
			dst := outPlane[row*w : row*w+w]
			// dst[dx:] gets src[:w-dx], dst[:dx] gets src[w-dx:].
			copy(dst[dx:], src[:w-dx])
			copy(dst[:dx], src[w-dx:])
		}
	}
	return out
}
