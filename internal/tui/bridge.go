package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/hedgesweep/internal/orchestration"
)

// programRef is a shared reference to the tea.Program.
// bubbletea copies the model on every Update, so the reporter goroutines
// need a pointer that survives the copies.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the program. It is a no-op before SetProgram.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// ProgressReporter forwards each task completion to the dashboard.
type ProgressReporter struct {
	ref *programRef
}

var _ orchestration.ProgressReporter = (*ProgressReporter)(nil)

// DisplayProgress drains the progress channel and sends a TaskDoneMsg per
// finished task, then a ProgressDoneMsg once the channel is closed.
func (r *ProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(total)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}
	for update := range progressChan {
		r.ref.Send(TaskDoneMsg{Result: update.Result, Progress: agg.Update(update)})
	}
	r.ref.Send(ProgressDoneMsg{})
}

// ResultPresenter hands the final result set to the dashboard instead of
// writing it out.
type ResultPresenter struct {
	ref *programRef
}

var _ orchestration.ResultPresenter = (*ResultPresenter)(nil)

func (p *ResultPresenter) PresentResults(results orchestration.ResultSet, _ io.Writer) {
	p.ref.Send(SweepDoneMsg{Results: results})
}

func (p *ResultPresenter) PresentFailure(err error, results orchestration.ResultSet, _ io.Writer) {
	p.ref.Send(SweepDoneMsg{Results: results, Err: err})
}
