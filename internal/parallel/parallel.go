// Package parallel provides the loop-splitting helper the CPU backend
// uses to spread channel work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how a loop is split.
type Config struct {
	Enabled    bool // Whether to run chunks on separate goroutines.
	NumWorkers int  // Number of goroutines to split across.
	MinN       int  // Loops shorter than this run sequentially.
}

// DefaultConfig returns a configuration sized to the machine. MinN is 2
// because the work items handed to For are whole channel planes, heavy
// enough to be worth a goroutine each.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinN:       2,
	}
}

// For executes f(i) for i in [0, n). Iterations are split into
// contiguous chunks across cfg.NumWorkers goroutines; the zero Config
// runs sequentially. f must be safe to call concurrently for distinct i.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinN {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + cfg.NumWorkers - 1) / cfg.NumWorkers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
