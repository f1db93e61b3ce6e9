package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/hedgesweep/internal/format"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/ui"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner suffix.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }

// UpdateSuffix sets the suffix under the spinner's lock, since the spinner
// goroutine reads it concurrently.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with a progress bar, the completed count
// and an ETA until progressChan is closed, then prints a one-line summary.
// It calls wg.Done when it returns.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(total)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	last := orchestration.AggregatedProgress{Total: total}
	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(FormatProgress(last))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintln(out, FormatProgressSummary(last, agg.Elapsed()))
				return
			}
			last = agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(FormatProgress(last))
		}
	}
}

// FormatProgress renders the spinner suffix for an aggregated progress.
func FormatProgress(p orchestration.AggregatedProgress) string {
	line := fmt.Sprintf(" %s %d/%d", format.FormatProgressBarWithETA(p.Fraction, p.ETA, ProgressBarWidth), p.Completed, p.Total)
	if p.Failed > 0 {
		line += fmt.Sprintf(" (%s%d failed%s)", ui.ColorRed(), p.Failed, ui.ColorReset())
	}
	return line
}

// FormatProgressSummary renders the line printed once all tasks finished.
func FormatProgressSummary(p orchestration.AggregatedProgress, elapsed time.Duration) string {
	return fmt.Sprintf("Finished %d/%d tasks in %s (%s), %d failed",
		p.Completed, p.Total, format.FormatDuration(elapsed),
		format.FormatThroughput(p.Completed, elapsed), p.Failed)
}
