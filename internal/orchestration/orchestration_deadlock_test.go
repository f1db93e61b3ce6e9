package orchestration

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/sweep"
)

// behaviorRoutine simulates various routine behaviors for deadlock testing.
func behaviorRoutine(behavior string, delay time.Duration) routineFunc {
	return func(ctx context.Context, task sweep.Task) (hedging.Stats, error) {
		switch behavior {
		case "slow":
			for range 20 {
				select {
				case <-ctx.Done():
					return hedging.Stats{}, ctx.Err()
				case <-time.After(delay):
				}
			}
		case "error":
			return hedging.Stats{}, errors.New("simulated error")
		case "mixed":
			if task.Schedule%2 == 0 {
				return hedging.Stats{}, errors.New("simulated error")
			}
			time.Sleep(delay)
		}
		return hedging.Stats{}, nil
	}
}

// slowProgressReporter consumes updates slower than tasks complete.
type slowProgressReporter struct{}

func (slowProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
		time.Sleep(time.Millisecond)
	}
}

// TestOrchestrationNoDeadlock_MixedBehaviors verifies that ExecuteSweep
// completes without deadlocking under various routine behaviors, pool sizes
// and failure policies.
func TestOrchestrationNoDeadlock_MixedBehaviors(t *testing.T) {
	testCases := []struct {
		name     string
		behavior string
		workers  int
		policy   FailurePolicy
		reporter ProgressReporter
	}{
		{name: "all_instant", behavior: "instant", workers: 4},
		{name: "single_worker", behavior: "instant", workers: 1},
		{name: "more_workers_than_tasks", behavior: "instant", workers: 500},
		{name: "slow", behavior: "slow", workers: 8, reporter: NullProgressReporter{}},
		{name: "all_fail_fail_fast", behavior: "error", workers: 3},
		{name: "all_fail_collect_all", behavior: "error", workers: 3, policy: CollectAll},
		{name: "mixed_fail_fast", behavior: "mixed", workers: 2},
		{name: "mixed_collect_all", behavior: "mixed", workers: 2, policy: CollectAll},
		{name: "slow_reporter", behavior: "instant", workers: 4, reporter: slowProgressReporter{}},
	}

	axes := sweep.Axes{
		Strategies:     []hedging.Strategy{hedging.Delta, hedging.DeltaVega},
		Datasets:       []string{"a", "b"},
		PortfolioSizes: []int{1, 2, 3},
		Schedules:      []int{1, 2, 3, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				_, _ = ExecuteSweep(ctx, axes, nil, Options{
					Workers:  tc.workers,
					Policy:   tc.policy,
					Progress: tc.reporter,
					Resolve:  fakeResolver(behaviorRoutine(tc.behavior, time.Millisecond)),
				})
			}()

			select {
			case <-done:
				// Success - no deadlock
			case <-time.After(10 * time.Second):
				t.Fatal("DEADLOCK: ExecuteSweep did not complete within timeout")
			}
		})
	}
}

// TestOrchestrationNoDeadlock_ContextCancellation verifies that cancelling
// the context during execution does not cause a deadlock.
func TestOrchestrationNoDeadlock_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	axes := sweep.Axes{
		Strategies:     []hedging.Strategy{hedging.Delta},
		Datasets:       []string{"a"},
		PortfolioSizes: []int{1, 2, 3, 4, 5},
		Schedules:      []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}

	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err = ExecuteSweep(ctx, axes, nil, Options{
			Workers: 2,
			Resolve: fakeResolver(behaviorRoutine("slow", 100*time.Millisecond)),
		})
	}()

	// Cancel after a short delay
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DEADLOCK after context cancellation")
	}
}
