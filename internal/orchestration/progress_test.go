package orchestration

import (
	"errors"
	"testing"
)

func TestNewProgressAggregator_Positive(t *testing.T) {
	agg := NewProgressAggregator(3)
	if agg == nil {
		t.Fatal("expected non-nil aggregator for total=3")
	}
	if agg.Total() != 3 {
		t.Errorf("expected Total()=3, got %d", agg.Total())
	}
}

func TestNewProgressAggregator_Empty(t *testing.T) {
	for _, total := range []int{0, -1} {
		if agg := NewProgressAggregator(total); agg != nil {
			t.Errorf("expected nil aggregator for total=%d", total)
		}
	}
}

func TestProgressAggregator_Update(t *testing.T) {
	agg := NewProgressAggregator(4)

	ap := agg.Update(ProgressUpdate{Completed: 1, Total: 4})
	if ap.Completed != 1 || ap.Failed != 0 || ap.Fraction != 0.25 {
		t.Errorf("unexpected first update %+v", ap)
	}

	ap = agg.Update(ProgressUpdate{Result: TaskResult{Err: errors.New("boom")}, Completed: 2, Total: 4})
	if ap.Failed != 1 || ap.Fraction != 0.5 {
		t.Errorf("failures must be counted, got %+v", ap)
	}

	ap = agg.Update(ProgressUpdate{Completed: 4, Total: 4})
	if ap.Fraction != 1 || ap.ETA != 0 || ap.Failed != 1 {
		t.Errorf("unexpected final update %+v", ap)
	}
}

func TestDrainChannel(t *testing.T) {
	ch := make(chan ProgressUpdate, 3)
	ch <- ProgressUpdate{Completed: 1}
	ch <- ProgressUpdate{Completed: 2}
	close(ch)
	DrainChannel(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be drained")
	}
}

func TestTaskState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state    TaskState
		name     string
		terminal bool
	}{
		{TaskSubmitted, "submitted", false},
		{TaskRunning, "running", false},
		{TaskCompleted, "completed", true},
		{TaskFailed, "failed", true},
		{TaskState(42), "unknown", false},
	}
	for _, tt := range tests {
		if tt.state.String() != tt.name || tt.state.Terminal() != tt.terminal {
			t.Errorf("%d: got %q terminal=%v", tt.state, tt.state.String(), tt.state.Terminal())
		}
	}
	if (TaskResult{}).State() != TaskCompleted || (TaskResult{Err: errors.New("x")}).State() != TaskFailed {
		t.Error("TaskResult.State must reflect Err")
	}
}
