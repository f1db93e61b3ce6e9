package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/sweep"
)

func sampleResults() orchestration.ResultSet {
	return orchestration.ResultSet{
		{
			Task: sweep.Task{Strategy: hedging.Delta, Dataset: "2010-01", PortfolioSize: 2, Schedule: 5},
			Stats: hedging.Stats{
				Strategy: hedging.Delta, Dataset: "2010-01", PortfolioSize: 2, Schedule: 5,
				Days: 20, Rebalances: 4, MeanError: 0.5, MSE: 0.25, MaxAbsError: 1.5,
				PnL: decimal.RequireFromString("12.3456"),
			},
			Duration: 1500 * time.Microsecond,
		},
		{
			Task:     sweep.Task{Strategy: hedging.DeltaVega, Dataset: "2010-02", PortfolioSize: 1, Schedule: 1},
			Duration: time.Millisecond,
			Err:      errors.New("boom"),
		},
	}
}

func TestNewRecords(t *testing.T) {
	t.Parallel()
	runID := uuid.New()
	records := NewRecords(runID, sampleResults())
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.RunID != runID || first.Strategy != "delta" || first.Dataset != "2010-01" {
		t.Errorf("unexpected identity fields: %+v", first)
	}
	if first.Rebalances != 4 || first.MSE != 0.25 || first.DurationMS != 1.5 {
		t.Errorf("unexpected stats fields: %+v", first)
	}
	if !first.PnL.Equal(decimal.RequireFromString("12.3456")) {
		t.Errorf("pnl = %s", first.PnL)
	}
	if first.Error != "" {
		t.Errorf("successful record should carry no error, got %q", first.Error)
	}

	if records[1].Strategy != "delta_vega" || records[1].Error != "boom" {
		t.Errorf("unexpected failed record: %+v", records[1])
	}
}

type recordingSink struct {
	writes int
	closed bool
	err    error
}

func (s *recordingSink) Write(context.Context, uuid.UUID, orchestration.ResultSet) error {
	s.writes++
	return s.err
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.err
}

func TestMulti(t *testing.T) {
	t.Parallel()
	errA := errors.New("a failed")
	a := &recordingSink{err: errA}
	b := &recordingSink{}
	sink := Multi(a, b)

	err := sink.Write(context.Background(), uuid.New(), sampleResults())
	if !errors.Is(err, errA) {
		t.Errorf("expected joined error to contain errA, got %v", err)
	}
	if a.writes != 1 || b.writes != 1 {
		t.Errorf("every sink should be written once even after a failure: a=%d b=%d", a.writes, b.writes)
	}

	if err := sink.Close(); !errors.Is(err, errA) {
		t.Errorf("expected close error, got %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("every sink should be closed")
	}
}

func TestMulti_Empty(t *testing.T) {
	t.Parallel()
	sink := Multi()
	if err := sink.Write(context.Background(), uuid.New(), nil); err != nil {
		t.Errorf("empty Multi should not fail, got %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("empty Multi close should not fail, got %v", err)
	}
}
