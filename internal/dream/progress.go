package dream

import (
	"fmt"
	"io"
	"strings"
)

// Meter receives progress updates during a dream run. Progress is
// measured in pixels processed: every network pass over a tile reports
// the tile's pixel count, and the total covers every step of every
// octave.
type Meter interface {
	// Start announces the total number of pixels the run will process.
	Start(total int)
	// Add reports n more pixels processed.
	Add(n int)
	// Close finalizes the meter. It runs whether the dream completed
	// or failed, and regardless of whether any progress was reported.
	Close()
}

// meter resolves the progress sink a run should report to, or nil.
func (c Config) meter() Meter {
	if c.Meter != nil {
		return c.Meter
	}
	if c.Progress != nil {
		return &consoleMeter{w: c.Progress}
	}
	return nil
}

const meterWidth = 30

// consoleMeter renders an in-place progress bar on a single line.
type consoleMeter struct {
	w     io.Writer
	total int
	done  int
	wrote bool
}

func (m *consoleMeter) Start(total int) {
	m.total = total
	m.done = 0
}

func (m *consoleMeter) Add(n int) {
	m.done += n
	filled := 0
	if m.total > 0 {
		filled = meterWidth * m.done / m.total
		if filled > meterWidth {
			filled = meterWidth
		}
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", meterWidth-filled)
	fmt.Fprintf(m.w, "\r  [%s] %d/%d px", bar, m.done, m.total)
	m.wrote = true
}

func (m *consoleMeter) Close() {
	if m.wrote {
		fmt.Fprintln(m.w)
	}
}

// tracker accumulates the run total as octaves are entered and starts
// the meter lazily at the first tile. Octave entries all happen before
// the first tile runs (the recursion descends to the coarsest octave
// first), so the total is complete by then.
type tracker struct {
	meter   Meter
	total   int
	started bool
}

func newTracker(m Meter) *tracker {
	return &tracker{meter: m}
}

func (t *tracker) extend(px int) {
	t.total += px
}

func (t *tracker) add(px int) {
	if t.meter == nil {
		return
	}
	if !t.started {
		t.meter.Start(t.total)
		t.started = true
	}
	t.meter.Add(px)
}

func (t *tracker) close() {
	if t.meter != nil {
		t.meter.Close()
	}
}
