package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rollNaive is a reference implementation indexing element by element.
func rollNaive(t *Tensor, dy, dx int) *Tensor {
	shape := t.Shape()
	c, h, w := shape[0], shape[1], shape[2]
	out, _ := New(shape)
	for ch := 0; ch < c; ch++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sy := ((y-dy)%h + h) % h
				sx := ((x-dx)%w + w) % w
				out.Data()[(ch*h+y)*w+x] = t.Data()[(ch*h+sy)*w+sx]
			}
		}
	}
	return out
}

func TestRollHW_MatchesNaive(t *testing.T) {
	tn, err := FromSlice(Shape{2, 3, 4}, []float32{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,

		12, 13, 14, 15,
		16, 17, 18, 19,
		20, 21, 22, 23,
	})
	require.NoError(t, err)

	for _, shift := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {2, 3}, {-1, -2}, {3, 4}, {-3, -4}, {7, 9}} {
		got := tn.RollHW(shift[0], shift[1])
		want := rollNaive(tn, shift[0], shift[1])
		assert.Equal(t, want.Data(), got.Data(), "shift %v", shift)
	}
}

func TestRollHW_InverseRestores(t *testing.T) {
	tn, err := FromSlice(Shape{1, 4, 5}, []float32{
		1, 2, 3, 4, 5,
		6, 7, 8, 9, 10,
		11, 12, 13, 14, 15,
		16, 17, 18, 19, 20,
	})
	require.NoError(t, err)

	for _, shift := range [][2]int{{1, 2}, {-2, 3}, {4, -5}, {17, -23}} {
		back := tn.RollHW(shift[0], shift[1]).RollHW(-shift[0], -shift[1])
		assert.Equal(t, tn.Data(), back.Data(), "shift %v", shift)
	}
}

func TestRollHW_DoesNotMutate(t *testing.T) {
	tn, err := FromSlice(Shape{1, 2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	_ = tn.RollHW(1, 1)
	assert.Equal(t, []float32{1, 2, 3, 4}, tn.Data())
}

func TestRollHW_Non3DPanics(t *testing.T) {
	tn, err := New(Shape{2, 2})
	require.NoError(t, err)
	assert.Panics(t, func() { tn.RollHW(1, 1) })
}
