package commands

import (
	"runtime"
	"sync"
)

// parallelRows runs fn(y) for every y in [0, rows) on up to GOMAXPROCS workers.
// Rows are striped across workers so uneven rows balance out.
func parallelRows(rows int, fn func(y int)) {
	if rows <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > rows {
		workers = rows
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(start int) {
			defer wg.Done()
			for y := start; y < rows; y += workers {
				fn(y)
			}
		}(w)
	}
	wg.Wait()
}
