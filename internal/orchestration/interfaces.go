package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/sweep"
)

// TaskResult is the outcome of one task. It is owned by the collector once
// received and is never shared with another worker.
type TaskResult struct {
	Task sweep.Task
	// Stats is the routine output. It is the zero value if Err is set.
	Stats hedging.Stats
	// Duration is the time spent in the routine.
	Duration time.Duration
	// Err is an apperrors.TaskExecutionError when the routine failed or panicked.
	Err error
}

// State returns the terminal state of the task.
func (r TaskResult) State() TaskState {
	if r.Err != nil {
		return TaskFailed
	}
	return TaskCompleted
}

// ResultSet holds one TaskResult per submitted task, in arrival order.
type ResultSet []TaskResult

// Failed returns the results whose task failed.
func (rs ResultSet) Failed() ResultSet {
	var failed ResultSet
	for _, r := range rs {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// TotalDuration sums the time spent in routines across all tasks.
func (rs ResultSet) TotalDuration() time.Duration {
	var total time.Duration
	for _, r := range rs {
		total += r.Duration
	}
	return total
}

// ProgressUpdate reports that one more task reached a terminal state.
type ProgressUpdate struct {
	Result    TaskResult
	Completed int
	Total     int
}

// ProgressReporter defines the interface for displaying sweep progress.
// This interface decouples the orchestration layer from the presentation
// layer: implementations render spinners or logs while the orchestration
// layer focuses on dispatching tasks.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed and then
	// calls wg.Done.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving one update per finished task.
	//   - total: The number of tasks in the sweep.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer) {
	f(wg, progressChan, total, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
	}
}

// ResultPresenter defines the interface for presenting the outcome of a sweep,
// allowing different output formats without modifying the orchestration logic.
type ResultPresenter interface {
	// PresentResults displays every collected result.
	PresentResults(results ResultSet, out io.Writer)
	// PresentFailure reports a failed sweep instead of a result list. The
	// error message itself is printed once, by the exit code handler.
	PresentFailure(err error, results ResultSet, out io.Writer)
}

// Observer receives task lifecycle events. Methods are called concurrently
// from worker goroutines and must be safe for concurrent use.
type Observer interface {
	TaskSubmitted(task sweep.Task)
	TaskStarted(task sweep.Task)
	TaskFinished(result TaskResult)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) TaskSubmitted(sweep.Task) {}
func (NopObserver) TaskStarted(sweep.Task) {}
func (NopObserver) TaskFinished(TaskResult) {}
