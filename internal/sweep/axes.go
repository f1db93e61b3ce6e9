package sweep

import (
	"cmp"
	"slices"

	"github.com/agbru/hedgesweep/internal/hedging"
)

// Axes holds the normalized values of every configuration axis.
type Axes struct {
	Strategies     []hedging.Strategy
	Datasets       []string
	PortfolioSizes []int
	Schedules      []int
}

// NormalizeAxis returns the sorted, duplicate-free values of one axis.
// The input is not modified. A nil or empty input yields an empty axis.
func NormalizeAxis[T cmp.Ordered](values []T) []T {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}

// NormalizeStrategyNames canonicalizes strategy names ("delta-vega" becomes
// "delta_vega") and then normalizes them like any other axis.
func NormalizeStrategyNames(names []string) []string {
	canonical := make([]string, len(names))
	for i, n := range names {
		canonical[i] = hedging.CanonicalName(n)
	}
	return NormalizeAxis(canonical)
}

// Normalize builds the sweep axes from raw user input.
//
// Every strategy name must map to a supported strategy; the first one that
// does not is reported as an apperrors.UnknownStrategyError and no axes are
// returned.
func Normalize(strategyNames, datasets []string, portfolioSizes, schedules []int) (Axes, error) {
	names := NormalizeStrategyNames(strategyNames)
	strategies := make([]hedging.Strategy, 0, len(names))
	for _, n := range names {
		s, err := hedging.ParseStrategy(n)
		if err != nil {
			return Axes{}, err
		}
		strategies = append(strategies, s)
	}
	return Axes{
		Strategies:     strategies,
		Datasets:       NormalizeAxis(datasets),
		PortfolioSizes: NormalizeAxis(portfolioSizes),
		Schedules:      NormalizeAxis(schedules),
	}, nil
}

// Size returns the number of tasks in the grid, the product of the axis lengths.
func (a Axes) Size() int {
	return len(a.Strategies) * len(a.Datasets) * len(a.PortfolioSizes) * len(a.Schedules)
}

// Empty reports whether the grid has no task.
func (a Axes) Empty() bool {
	return a.Size() == 0
}
