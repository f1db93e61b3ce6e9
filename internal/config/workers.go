package config

import "runtime"

// Worker count resolution (highest priority first):
//   1. --workers flag
//   2. HEDGESWEEP_WORKERS
//   3. runtime.NumCPU()
// The result is then clamped to the grid size so no idle worker is started.

// ResolveWorkerCount returns the pool size for a sweep of gridSize tasks.
// A non-positive request selects the number of CPUs. The result is at least 1.
func ResolveWorkerCount(requested, gridSize int) int {
	workers := requested
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if gridSize > 0 && workers > gridSize {
		workers = gridSize
	}
	return max(workers, 1)
}
