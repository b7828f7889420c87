// Package parallel fans independent loop iterations out over goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how loops are split across goroutines.
type Config struct {
	Enabled      bool // Whether work may run on more than one goroutine.
	NumWorkers   int  // Upper bound on goroutines per loop.
	MinChunkSize int  // Fewer iterations than this per goroutine is not worth a goroutine.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4,
	}
}

// For calls f(i) for every i in [0, n).
//
// Iterations are grouped into contiguous chunks of at least cfg.MinChunkSize,
// one goroutine per chunk. f must be safe to call concurrently for distinct i.
// Runs inline when parallelism is disabled or n is too small to split.
func For(n int, f func(i int), cfg Config) {
	workers := cfg.NumWorkers
	if chunks := n / max(cfg.MinChunkSize, 1); chunks < workers {
		workers = chunks
	}
	if !cfg.Enabled || workers < 2 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				f(i)
			}
		}()
	}
	wg.Wait()
}

// ForBatch iterates the batch x channels grid, the layout of image-like
// [N, C, H, W] tensors.
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	For(batch*channels, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
