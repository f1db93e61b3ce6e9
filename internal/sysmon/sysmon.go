// Package sysmon samples host CPU and memory usage for the run summary.
package sysmon

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent  float64 // 0.0 .. 100.0
	MemPercent  float64 // 0.0 .. 100.0
	LogicalCPUs int
	TotalMemory uint64 // bytes
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call), so the first call of a
// process reports usage since boot. Fields that cannot be read stay zero.
func Sample(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.LogicalCPUs = n
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.TotalMemory = vmem.Total
	}
	return s
}

// String renders the snapshot for the verbose summary.
func (s Stats) String() string {
	return fmt.Sprintf("cpu %.1f%% of %d cores, memory %.1f%% of %.1f GiB",
		s.CPUPercent, s.LogicalCPUs, s.MemPercent, float64(s.TotalMemory)/(1<<30))
}
