package metrics

import (
	"runtime"
	"time"
)

// Footprint is the memory cost of a sweep, measured from the moment its
// MemoryCollector was created.
type Footprint struct {
	HeapInUse      uint64 // live heap bytes at the end of the run
	HeapObjects    uint64
	AllocatedBytes uint64 // cumulative heap allocations during the run
	GCCycles       uint32
	GCPause        time.Duration
}

// MemoryCollector measures the memory a sweep costs. The baseline is taken
// when the collector is created, so create it right before dispatch.
type MemoryCollector struct {
	base runtime.MemStats
}

// NewMemoryCollector reads the baseline runtime statistics.
func NewMemoryCollector() *MemoryCollector {
	mc := &MemoryCollector{}
	runtime.ReadMemStats(&mc.base)
	return mc
}

// HeapInUse returns the bytes of allocated heap objects right now.
func (mc *MemoryCollector) HeapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// Footprint returns the resources consumed since the baseline.
func (mc *MemoryCollector) Footprint() Footprint {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return footprintBetween(mc.base, m)
}

func footprintBetween(before, after runtime.MemStats) Footprint {
	return Footprint{
		HeapInUse:      after.HeapAlloc,
		HeapObjects:    after.HeapObjects,
		AllocatedBytes: after.TotalAlloc - before.TotalAlloc,
		GCCycles:       after.NumGC - before.NumGC,
		GCPause:        time.Duration(after.PauseTotalNs - before.PauseTotalNs),
	}
}
