package cli

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	apperrors "github.com/agbru/hedgesweep/internal/errors"
	"github.com/agbru/hedgesweep/internal/format"
	"github.com/agbru/hedgesweep/internal/metrics"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/sysmon"
	"github.com/agbru/hedgesweep/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a spinner.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for the running sweep.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	DisplayProgress(wg, progressChan, total, out)
}

// CLIResultPresenter renders results as a table. Verbose adds a duration
// column.
type CLIResultPresenter struct {
	Verbose bool
}

// QuietPresenter prints one line per result and nothing else.
type QuietPresenter struct{}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ResultPresenter = QuietPresenter{}
)

// PresentResults prints the result table followed by a one-line summary.
func (p CLIResultPresenter) PresentResults(results orchestration.ResultSet, out io.Writer) {
	fmt.Fprintf(out, "\n%s\n", ui.Heading("--- Hedging Results ---"))
	if len(results) == 0 {
		fmt.Fprintln(out, "No configuration to evaluate: the sweep grid is empty.")
		return
	}
	p.renderTable(results, out)
	fmt.Fprintf(out, "%d results, %d failed, %s spent in routines.\n",
		len(results), len(results.Failed()), format.FormatDuration(results.TotalDuration()))
}

// PresentFailure reports a failed run. Under collect-all the partial results
// are still shown.
func (p CLIResultPresenter) PresentFailure(_ error, results orchestration.ResultSet, out io.Writer) {
	fmt.Fprintf(out, "\n%s\n", ui.Heading("--- Sweep Failed ---"))
	if len(results) == 0 {
		return
	}
	p.renderTable(results, out)
	fmt.Fprintf(out, "%d results collected, %d failed.\n", len(results), len(results.Failed()))
}

func (p CLIResultPresenter) renderTable(results orchestration.ResultSet, out io.Writer) {
	header := []any{"Strategy", "Dataset", "Size", "Schedule", "Days", "Rebalances", "Mean Error", "RMSE", "Max |Error|", "PnL"}
	if p.Verbose {
		header = append(header, "Duration")
	}
	header = append(header, "Status")

	table := tablewriter.NewWriter(out)
	table.Header(header...)
	for _, r := range results {
		_ = table.Append(tableRow(r, p.Verbose)...)
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(out, "%sfailed to render results: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
}

func tableRow(r orchestration.TaskResult, verbose bool) []any {
	row := []any{
		r.Task.Strategy.String(),
		r.Task.Dataset,
		strconv.Itoa(r.Task.PortfolioSize),
		strconv.Itoa(r.Task.Schedule),
	}
	if r.Err != nil {
		row = append(row, "-", "-", "-", "-", "-", "-")
	} else {
		s := r.Stats
		row = append(row,
			strconv.Itoa(s.Days),
			strconv.Itoa(s.Rebalances),
			fmt.Sprintf("%.4f", s.MeanError),
			fmt.Sprintf("%.4f", s.RMSE()),
			fmt.Sprintf("%.4f", s.MaxAbsError),
			s.PnL.StringFixed(2),
		)
	}
	if verbose {
		row = append(row, format.FormatDuration(r.Duration))
	}
	return append(row, r.State().String())
}

// PresentResults prints FormatQuietResult for each result.
func (QuietPresenter) PresentResults(results orchestration.ResultSet, out io.Writer) {
	for _, r := range results {
		fmt.Fprintln(out, FormatQuietResult(r))
	}
}

// PresentFailure prints any collected results.
func (q QuietPresenter) PresentFailure(_ error, results orchestration.ResultSet, out io.Writer) {
	q.PresentResults(results, out)
}

// FormatQuietResult renders one result on a single line suitable for scripts.
func FormatQuietResult(r orchestration.TaskResult) string {
	if r.Err != nil {
		return fmt.Sprintf("%s error=%q", r.Task, r.Err.Error())
	}
	return r.Stats.String()
}

// DisplayBanner prints the run header before tasks are dispatched.
func DisplayBanner(out io.Writer, tasks, workers int, runID string) {
	fmt.Fprintf(out, "%sPerforming hedging in parallel...%s\n", ui.ColorMagenta(), ui.ColorReset())
	fmt.Fprintf(out, "Run %s%s%s: %s%d%s tasks on %s%d%s workers.\n",
		ui.ColorGrey(), runID, ui.ColorReset(),
		ui.ColorBlue(), tasks, ui.ColorReset(),
		ui.ColorBlue(), workers, ui.ColorReset())
}

// DisplayRunSummary prints the verbose resource summary of a run.
func DisplayRunSummary(out io.Writer, elapsed time.Duration, fp metrics.Footprint, host sysmon.Stats) {
	fmt.Fprintf(out, "\n%s\n", ui.Heading("Run Summary:"))
	fmt.Fprintf(out, "  Wall time:       %s\n", format.FormatDuration(elapsed))
	fmt.Fprintf(out, "  Allocated:       %s\n", format.FormatBytes(fp.AllocatedBytes))
	fmt.Fprintf(out, "  Heap in use:     %s (%d objects)\n", format.FormatBytes(fp.HeapInUse), fp.HeapObjects)
	fmt.Fprintf(out, "  GC:              %d cycles, %s paused\n", fp.GCCycles, format.FormatDuration(fp.GCPause))
	fmt.Fprintf(out, "  Host:            %s\n", host)
}

// CLIColorProvider supplies the active theme's colors to apperrors.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
