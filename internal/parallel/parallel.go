// Package parallel splits index ranges of CPU kernels across goroutines.
//
// Callers must only use it for loops whose iterations write disjoint memory.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how loops are split.
type Config struct {
	Enabled      bool // Run chunks on goroutines.
	NumWorkers   int  // Upper bound on chunks per loop.
	MinChunkSize int  // Loops shorter than this run inline.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// For calls f(i) for every i in [0, n) and returns once all calls finished.
// The loop runs inline when cfg is disabled or n is below MinChunkSize.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers < 2 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
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

// ForBatch calls f(b, c) for every sample b and channel c, the iteration
// shape of NCHW convolution kernels.
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	if channels <= 0 {
		return
	}
	For(batch*channels, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
