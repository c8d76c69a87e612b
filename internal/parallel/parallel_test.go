package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversEveryIndexOnce(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
	}{
		{"empty", 0, 4},
		{"below threshold", Threshold - 1, 8},
		{"serial", 1000, 1},
		{"even split", 1024, 4},
		{"uneven split", 1001, 7},
		{"more workers than items", Threshold, Threshold * 2},
		{"gomaxprocs", 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			For(tt.n, tt.workers, func(lo, hi int) {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestForIsABarrier(t *testing.T) {
	const n = 4096
	var done int64
	For(n, 8, func(lo, hi int) {
		atomic.AddInt64(&done, int64(hi-lo))
	})
	if got := atomic.LoadInt64(&done); got != n {
		t.Errorf("For returned with %d of %d items processed", got, n)
	}
}

func TestWorkers(t *testing.T) {
	if Workers(3) != 3 {
		t.Errorf("Workers(3) = %d", Workers(3))
	}
	if Workers(0) < 1 || Workers(-1) < 1 {
		t.Error("Workers should resolve non-positive counts to at least 1")
	}
}
