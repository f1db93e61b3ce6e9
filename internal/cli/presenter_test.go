package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/metrics"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/sweep"
	"github.com/agbru/hedgesweep/internal/sysmon"
)

func sampleResults() orchestration.ResultSet {
	delta := sweep.Task{Strategy: hedging.Delta, Dataset: "2010-01", PortfolioSize: 2, Schedule: 5}
	vega := sweep.Task{Strategy: hedging.DeltaVega, Dataset: "2010-02", PortfolioSize: 1, Schedule: 1}
	return orchestration.ResultSet{
		{
			Task: delta,
			Stats: hedging.Stats{
				Strategy: hedging.Delta, Dataset: "2010-01", PortfolioSize: 2, Schedule: 5,
				Days: 20, Rebalances: 4, MeanError: 0.125, MSE: 0.25, MaxAbsError: 1.5,
				PnL: decimal.RequireFromString("-3.456"),
			},
			Duration: 2 * time.Millisecond,
		},
		{Task: vega, Duration: time.Millisecond, Err: errors.New("missing quote")},
	}
}

func TestCLIResultPresenter_PresentResults(t *testing.T) {
	useNoColor(t)
	var buf bytes.Buffer
	CLIResultPresenter{Verbose: true}.PresentResults(sampleResults(), &buf)
	out := buf.String()

	for _, want := range []string{"Hedging Results", "delta", "2010-01", "0.1250", "0.5000", "-3.46", "completed", "failed", "2.0ms", "2 results, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLIResultPresenter_EmptyGrid(t *testing.T) {
	useNoColor(t)
	var buf bytes.Buffer
	CLIResultPresenter{}.PresentResults(orchestration.ResultSet{}, &buf)
	if !strings.Contains(buf.String(), "sweep grid is empty") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestCLIResultPresenter_PresentFailure(t *testing.T) {
	useNoColor(t)
	err := errors.New("task delta/2010-02 failed")

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentFailure(err, nil, &buf)
	out := buf.String()
	if !strings.Contains(out, "Sweep Failed") || strings.Contains(out, "2010-01") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, err.Error()) {
		t.Error("the error message belongs to the exit handler")
	}

	buf.Reset()
	CLIResultPresenter{}.PresentFailure(err, sampleResults(), &buf)
	if out := buf.String(); !strings.Contains(out, "2010-01") || !strings.Contains(out, "2 results collected, 1 failed.") {
		t.Errorf("partial results not shown:\n%s", out)
	}
}

func TestQuietPresenter_PresentFailure(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	QuietPresenter{}.PresentFailure(errors.New("sweep failed"), sampleResults(), &buf)
	if strings.Contains(buf.String(), "sweep failed") || strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("expected only the result lines, got %q", buf.String())
	}
}

func TestTableRow(t *testing.T) {
	t.Parallel()
	results := sampleResults()
	row := tableRow(results[0], false)
	if len(row) != 11 {
		t.Fatalf("expected 11 cells, got %d", len(row))
	}
	if row[9] != "-3.46" || row[10] != "completed" {
		t.Errorf("unexpected row %v", row)
	}

	failed := tableRow(results[1], true)
	if len(failed) != 12 || failed[4] != "-" || failed[11] != "failed" {
		t.Errorf("unexpected failed row %v", failed)
	}
}

func TestQuietPresenter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	QuietPresenter{}.PresentResults(sampleResults(), &buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per result, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "delta 2010-01 size=2 schedule=5") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if lines[1] != `delta_vega/2010-02/size=1/schedule=1 error="missing quote"` {
		t.Errorf("unexpected failure line %q", lines[1])
	}
}

func TestDisplayBanner(t *testing.T) {
	useNoColor(t)
	var buf bytes.Buffer
	DisplayBanner(&buf, 4, 2, "run-1")
	out := buf.String()
	if !strings.HasPrefix(out, "Performing hedging in parallel...") || !strings.Contains(out, "4 tasks on 2 workers") {
		t.Errorf("unexpected banner %q", out)
	}
}

func TestDisplayRunSummary(t *testing.T) {
	useNoColor(t)
	var buf bytes.Buffer
	fp := metrics.Footprint{HeapInUse: 2048, HeapObjects: 10, AllocatedBytes: 3 << 20, GCCycles: 2, GCPause: 2 * time.Millisecond}
	DisplayRunSummary(&buf, time.Second, fp, sysmon.Stats{LogicalCPUs: 4})
	out := buf.String()
	for _, want := range []string{"Run Summary", "1.00s", "3.0 MiB", "2.0 KiB (10 objects)", "2 cycles, 2.0ms paused", "4 cores"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestCLIColorProvider(t *testing.T) {
	useNoColor(t)
	c := CLIColorProvider{}
	if c.Red() != "" || c.Yellow() != "" || c.Reset() != "" {
		t.Error("colors should be empty with the no-color theme")
	}
}
