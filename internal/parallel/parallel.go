// Package parallel runs data-parallel phases over index ranges.
// Each call to For is a barrier: it returns only after every chunk is done.
package parallel

import (
	"runtime"
	"sync"
)

// Threshold is the minimum item count worth splitting across goroutines.
// Below this, a single pass on the calling goroutine is faster.
const Threshold = 64

// Workers resolves a configured worker count; n <= 0 means GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// For calls fn over [0, n) split into contiguous chunks, one per worker,
// and waits for all of them. fn must only write state owned by its range.
func For(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)
	if workers == 1 || n < Threshold {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
