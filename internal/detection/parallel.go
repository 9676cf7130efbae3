package detection

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFor splits [0, n) into contiguous chunks and runs fn on each chunk.
// It returns once every chunk has finished.
func parallelFor(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so -0.5 lands on pixel 0 rather than -1.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
