package hedging

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Stats summarizes the hedging error of one evaluation.
//
// The daily hedging error is the change in portfolio value plus the change
// in hedge value between consecutive trading days. A perfect hedge has zero
// error every day.
type Stats struct {
	Strategy      Strategy        `json:"strategy"`
	Dataset       string          `json:"dataset"`
	PortfolioSize int             `json:"portfolio_size"`
	Schedule      int             `json:"schedule"`
	Days          int             `json:"days"`
	Rebalances    int             `json:"rebalances"`
	MeanError     float64         `json:"mean_error"`
	MSE           float64         `json:"mse"`
	MaxAbsError   float64         `json:"max_abs_error"`
	PnL           decimal.Decimal `json:"pnl"`
}

// RMSE returns the root mean squared hedging error.
func (s Stats) RMSE() float64 {
	return math.Sqrt(s.MSE)
}

// String renders the statistics on one line.
func (s Stats) String() string {
	return fmt.Sprintf("%s %s size=%d schedule=%d days=%d rebalances=%d mean=%.4f mse=%.4f max=%.4f pnl=%s",
		s.Strategy, s.Dataset, s.PortfolioSize, s.Schedule, s.Days, s.Rebalances,
		s.MeanError, s.MSE, s.MaxAbsError, s.PnL.StringFixed(2))
}

// errorAccumulator gathers daily hedging errors.
type errorAccumulator struct {
	n      int
	sum    float64
	sumSq  float64
	maxAbs float64
	pnl    decimal.Decimal
}

func (a *errorAccumulator) add(e float64) {
	a.n++
	a.sum += e
	a.sumSq += e * e
	a.maxAbs = max(a.maxAbs, math.Abs(e))
	a.pnl = a.pnl.Add(decimal.NewFromFloat(e))
}

func (a *errorAccumulator) fill(s *Stats) {
	if a.n > 0 {
		s.MeanError = a.sum / float64(a.n)
		s.MSE = a.sumSq / float64(a.n)
	}
	s.MaxAbsError = a.maxAbs
	s.PnL = a.pnl.Round(4)
}
