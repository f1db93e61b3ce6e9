package hedging

import (
	"context"
	"errors"
	"fmt"

	"github.com/agbru/hedgesweep/internal/optionsdata"
	"github.com/agbru/hedgesweep/internal/pricing"
)

var (
	// ErrMissingQuote is returned when a held option has no quote on a day.
	ErrMissingQuote = errors.New("missing quote")
	// ErrInsufficientData is returned when a sheet cannot support the requested hedge.
	ErrInsufficientData = errors.New("insufficient data")
)

// DeltaHedge evaluates a portfolio of the portfolioSize front-month calls
// nearest the money, hedged with the underlying every schedule trading days.
func DeltaHedge(ctx context.Context, src optionsdata.Source, dataset string, portfolioSize, schedule int) (Stats, error) {
	return simulate(ctx, Delta, src, dataset, portfolioSize, schedule)
}

// DeltaVegaHedge evaluates the same portfolio as DeltaHedge, first offsetting
// its vega with the next-month at-the-money call and then offsetting the
// combined delta with the underlying.
func DeltaVegaHedge(ctx context.Context, src optionsdata.Source, dataset string, portfolioSize, schedule int) (Stats, error) {
	return simulate(ctx, DeltaVega, src, dataset, portfolioSize, schedule)
}

// position is the sensitivities and value of the held options on one day.
type position struct {
	value, delta, vega                float64
	hedgeValue, hedgeDelta, hedgeVega float64
}

func simulate(ctx context.Context, strategy Strategy, src optionsdata.Source, dataset string, portfolioSize, schedule int) (Stats, error) {
	if portfolioSize < 1 || schedule < 1 {
		return Stats{}, fmt.Errorf("portfolio size and schedule must be positive, got %d and %d", portfolioSize, schedule)
	}
	sheet, err := src.Sheet(dataset)
	if err != nil {
		return Stats{}, err
	}
	if len(sheet.Days) < 2 {
		return Stats{}, fmt.Errorf("%w: sheet %s has %d trading days, need at least 2", ErrInsufficientData, dataset, len(sheet.Days))
	}

	first := sheet.Days[0]
	expiries := first.Expiries()
	if len(expiries) == 0 || (strategy == DeltaVega && len(expiries) < 2) {
		return Stats{}, fmt.Errorf("%w: sheet %s has %d expiries for a %s hedge", ErrInsufficientData, dataset, len(expiries), strategy)
	}
	held := first.NearestStrikes(expiries[0], portfolioSize)
	if len(held) < portfolioSize {
		return Stats{}, fmt.Errorf("%w: sheet %s has %d front-month strikes, need %d", ErrInsufficientData, dataset, len(held), portfolioSize)
	}
	strikes := make([]float64, len(held))
	for i, q := range held {
		strikes[i] = q.Strike
	}
	series := heldSeries{strikes: strikes, frontDTE: expiries[0]}
	if strategy == DeltaVega {
		series.nextDTE = expiries[1]
		series.hedgeStrike = first.NearestStrikes(expiries[1], 1)[0].Strike
	}

	stats := Stats{
		Strategy:      strategy,
		Dataset:       dataset,
		PortfolioSize: portfolioSize,
		Schedule:      schedule,
		Days:          len(sheet.Days),
	}
	var (
		acc                errorAccumulator
		prev               position
		stockQty, hedgeQty float64
	)
	last := len(sheet.Days) - 1
	for t, day := range sheet.Days {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		pos, err := valuePosition(strategy, day, series, t)
		if err != nil {
			return Stats{}, fmt.Errorf("sheet %s: %w", dataset, err)
		}
		if t > 0 {
			spotMove := day.Spot - sheet.Days[t-1].Spot
			acc.add((pos.value - prev.value) + stockQty*spotMove + hedgeQty*(pos.hedgeValue-prev.hedgeValue))
		}
		if t%schedule == 0 && t < last {
			stockQty, hedgeQty = rebalance(strategy, pos)
			stats.Rebalances++
		}
		prev = pos
	}

	acc.fill(&stats)
	return stats, nil
}

// rebalance returns the new underlying and hedge option quantities.
func rebalance(strategy Strategy, pos position) (stock, option float64) {
	switch strategy {
	case Delta:
		return -pos.delta, 0
	case DeltaVega:
		if pos.hedgeVega > 0 {
			option = -pos.vega / pos.hedgeVega
		}
		return -(pos.delta + option*pos.hedgeDelta), option
	default:
		return 0, 0
	}
}

// heldSeries pins the instruments chosen on the first day. Days to expiry
// count trading days, so on day t a series is quoted at dte-t.
type heldSeries struct {
	strikes           []float64
	frontDTE, nextDTE int
	hedgeStrike       float64
}

func valuePosition(strategy Strategy, day optionsdata.Day, held heldSeries, t int) (position, error) {
	var pos position
	for _, k := range held.strikes {
		q, err := lookup(day, k, held.frontDTE-t)
		if err != nil {
			return position{}, err
		}
		T := pricing.YearFraction(q.DaysToExpiry)
		pos.value += q.Price
		pos.delta += pricing.CallDelta(day.Spot, k, T, day.Rate, q.ImpliedVol)
		pos.vega += pricing.Vega(day.Spot, k, T, day.Rate, q.ImpliedVol)
	}

	if strategy == DeltaVega {
		q, err := lookup(day, held.hedgeStrike, held.nextDTE-t)
		if err != nil {
			return position{}, err
		}
		T := pricing.YearFraction(q.DaysToExpiry)
		pos.hedgeValue = q.Price
		pos.hedgeDelta = pricing.CallDelta(day.Spot, held.hedgeStrike, T, day.Rate, q.ImpliedVol)
		pos.hedgeVega = pricing.Vega(day.Spot, held.hedgeStrike, T, day.Rate, q.ImpliedVol)
	}
	return pos, nil
}

func lookup(day optionsdata.Day, strike float64, dte int) (optionsdata.Quote, error) {
	q, ok := day.Find(strike, dte)
	if !ok {
		return optionsdata.Quote{}, fmt.Errorf("%w: strike %.2f expiring in %d days on %s",
			ErrMissingQuote, strike, dte, day.Date.Format(optionsdata.DateLayout))
	}
	return q, nil
}
