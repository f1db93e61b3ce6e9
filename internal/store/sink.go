package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agbru/hedgesweep/internal/orchestration"
)

// Sink receives the results of one sweep run.
type Sink interface {
	Write(ctx context.Context, runID uuid.UUID, results orchestration.ResultSet) error
	Close() error
}

// Record is the flat, serializable form of one task result.
type Record struct {
	RunID         uuid.UUID       `json:"run_id"`
	Strategy      string          `json:"strategy"`
	Dataset       string          `json:"dataset"`
	PortfolioSize int             `json:"portfolio_size"`
	Schedule      int             `json:"schedule"`
	Days          int             `json:"days"`
	Rebalances    int             `json:"rebalances"`
	MeanError     float64         `json:"mean_error"`
	MSE           float64         `json:"mse"`
	MaxAbsError   float64         `json:"max_abs_error"`
	PnL           decimal.Decimal `json:"pnl"`
	DurationMS    float64         `json:"duration_ms"`
	Error         string          `json:"error,omitempty"`
}

// NewRecords flattens a result set, keeping its order.
func NewRecords(runID uuid.UUID, results orchestration.ResultSet) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		rec := Record{
			RunID:         runID,
			Strategy:      r.Task.Strategy.String(),
			Dataset:       r.Task.Dataset,
			PortfolioSize: r.Task.PortfolioSize,
			Schedule:      r.Task.Schedule,
			Days:          r.Stats.Days,
			Rebalances:    r.Stats.Rebalances,
			MeanError:     r.Stats.MeanError,
			MSE:           r.Stats.MSE,
			MaxAbsError:   r.Stats.MaxAbsError,
			PnL:           r.Stats.PnL,
			DurationMS:    float64(r.Duration.Microseconds()) / 1000,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		records = append(records, rec)
	}
	return records
}

// multi fans a result set out to several sinks.
type multi []Sink

// Multi returns a Sink writing to every given sink in order. All sinks are
// attempted; their errors are joined.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Write(ctx context.Context, runID uuid.UUID, results orchestration.ResultSet) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, runID, results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
