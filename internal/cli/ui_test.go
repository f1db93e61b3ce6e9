package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/sweep"
	"github.com/agbru/hedgesweep/internal/ui"
)

// MockSpinner records the calls DisplayProgress makes.
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

func useNoColor(t *testing.T) {
	t.Helper()
	saved := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(saved) })
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(&buf))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("suffix = %q", s.Suffix)
	}
}

func TestDisplayProgress(t *testing.T) {
	useNoColor(t)
	original := newSpinner
	defer func() { newSpinner = original }()

	mockS := &MockSpinner{}
	newSpinner = func(...spinner.Option) Spinner { return mockS }

	task := sweep.Task{Strategy: hedging.Delta, Dataset: "2010-01", PortfolioSize: 1, Schedule: 1}
	progressChan := make(chan orchestration.ProgressUpdate, 2)
	progressChan <- orchestration.ProgressUpdate{Result: orchestration.TaskResult{Task: task}, Completed: 1, Total: 2}
	progressChan <- orchestration.ProgressUpdate{Result: orchestration.TaskResult{Task: task, Err: errors.New("boom")}, Completed: 2, Total: 2}
	close(progressChan)

	var wg sync.WaitGroup
	wg.Add(1)
	var out bytes.Buffer
	DisplayProgress(&wg, progressChan, 2, &out)
	wg.Wait()

	if !mockS.started || !mockS.stopped {
		t.Error("spinner should have been started and stopped")
	}
	if !strings.Contains(out.String(), "Finished 2/2 tasks") || !strings.Contains(out.String(), "1 failed") {
		t.Errorf("unexpected summary: %q", out.String())
	}
}

func TestDisplayProgress_ZeroTasks(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate)
	close(progressChan)

	var out bytes.Buffer
	DisplayProgress(&wg, progressChan, 0, &out)
	wg.Wait()
	if out.Len() != 0 {
		t.Errorf("an empty sweep should print nothing, got %q", out.String())
	}
}

func TestFormatProgress(t *testing.T) {
	useNoColor(t)
	line := FormatProgress(orchestration.AggregatedProgress{Completed: 3, Failed: 1, Total: 4, Fraction: 0.75, ETA: time.Second})
	for _, want := range []string{"75.0%", "3/4", "1 failed"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(FormatProgress(orchestration.AggregatedProgress{Completed: 1, Total: 4}), "failed") {
		t.Error("no failure count expected when nothing failed")
	}
}
