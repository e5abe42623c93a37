package dream

import (
	"math/rand"
	"slices"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// ascentStep performs one gradient-ascent update on img and returns the
// updated image. The image is shifted by a random offset first and
// shifted back afterwards, so tile seams and other grid artifacts do
// not accumulate in place.
func (d *Dreamer) ascentStep(img *tensor.Tensor, end string, cfg Config, rng *rand.Rand, tr *tracker) (*tensor.Tensor, error) {
	jitter := cfg.Jitter
	jx := rng.Intn(2*jitter+1) - jitter
	jy := rng.Intn(2*jitter+1) - jitter

	rolled := img.RollHW(jy, jx)
	g, err := d.gradTiled(rolled, end, cfg.MaxTileSize, tr)
	if err != nil {
		return nil, err
	}

	// Normalize by the median gradient magnitude so the step size is
	// comparable across layers and octaves. A zero median is not
	// guarded: the division saturates and NaNs propagate to the output.
	scale := cfg.StepSize / medianAbs(g.Data())
	data := rolled.Data()
	for i, gv := range g.Data() {
		data[i] += scale * gv
	}

	return rolled.RollHW(-jy, -jx), nil
}

// medianAbs returns the median of the absolute values, averaging the
// two middle order statistics when the count is even.
func medianAbs(v []float32) float32 {
	abs := make([]float32, len(v))
	for i, x := range v {
		if x < 0 {
			abs[i] = -x
		} else {
			abs[i] = x
		}
	}
	slices.Sort(abs)
	n := len(abs)
	if n%2 == 1 {
		return abs[n/2]
	}
	return (abs[n/2-1] + abs[n/2]) / 2
}
