package orchestration

import (
	"time"

	"github.com/agbru/hedgesweep/internal/format"
)

// ProgressAggregator turns the stream of task completions into an overall
// progress figure. It wraps format.ProgressWithETA so every reporter shares
// the same counting and ETA logic.
type ProgressAggregator struct {
	state  *format.ProgressWithETA
	total  int
	failed int
}

// NewProgressAggregator creates a new aggregator for a sweep of total tasks.
// Returns nil if total <= 0.
func NewProgressAggregator(total int) *ProgressAggregator {
	if total <= 0 {
		return nil
	}
	return &ProgressAggregator{state: format.NewProgressWithETA(total), total: total}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	Completed int
	Failed    int
	Total     int
	// Fraction is the finished share of the sweep (0.0 to 1.0).
	Fraction float64
	// ETA is the estimated time remaining based on the average task rate.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated result.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	if update.Result.Err != nil {
		a.failed++
	}
	fraction, eta := a.state.Update(update.Completed)
	return AggregatedProgress{
		Completed: update.Completed,
		Failed:    a.failed,
		Total:     a.total,
		Fraction:  fraction,
		ETA:       eta,
	}
}

// Elapsed returns the time since the aggregator was created.
func (a *ProgressAggregator) Elapsed() time.Duration {
	return a.state.Elapsed()
}

// Total returns the number of tasks being tracked.
func (a *ProgressAggregator) Total() int {
	return a.total
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
