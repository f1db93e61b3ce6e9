package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/logging"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/sweep"
)

var _ orchestration.Observer = (*SweepMetrics)(nil)

func TestSweepMetrics_Lifecycle(t *testing.T) {
	t.Parallel()
	m := NewSweepMetrics()
	ok := sweep.Task{Strategy: hedging.Delta, Dataset: "2010-01", PortfolioSize: 1, Schedule: 1}
	bad := sweep.Task{Strategy: hedging.DeltaVega, Dataset: "2010-01", PortfolioSize: 1, Schedule: 1}

	m.TaskSubmitted(ok)
	m.TaskSubmitted(bad)
	m.TaskStarted(ok)
	m.TaskStarted(bad)
	if got := testutil.ToFloat64(m.inFlight); got != 2 {
		t.Errorf("in flight = %v, want 2", got)
	}

	m.TaskFinished(orchestration.TaskResult{Task: ok, Duration: 10 * time.Millisecond})
	m.TaskFinished(orchestration.TaskResult{Task: bad, Duration: time.Millisecond, Err: errors.New("boom")})

	if got := testutil.ToFloat64(m.submitted); got != 2 {
		t.Errorf("submitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.completed.WithLabelValues("delta", "completed")); got != 1 {
		t.Errorf("delta completed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.completed.WithLabelValues("delta_vega", "failed")); got != 1 {
		t.Errorf("delta_vega failed = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestSweepMetrics_Handler(t *testing.T) {
	t.Parallel()
	m := NewSweepMetrics()
	m.TaskSubmitted(sweep.Task{Strategy: hedging.Delta})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"hedgesweep_tasks_submitted_total 1",
		"hedgesweep_heap_bytes",
		"go_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("exposition is missing %q", name)
		}
	}
}

func TestServe(t *testing.T) {
	t.Parallel()
	m := NewSweepMetrics()
	srv, err := Serve("127.0.0.1:0", m, logging.Nop())
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "hedgesweep_tasks_in_flight") {
		t.Error("scrape does not contain sweep metrics")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestServe_BadAddress(t *testing.T) {
	t.Parallel()
	if _, err := Serve("256.0.0.1:bad", NewSweepMetrics(), logging.Nop()); err == nil {
		t.Error("expected a listen error")
	}
}
