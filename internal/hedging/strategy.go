// Package hedging implements the hedge strategies evaluated by a sweep.
//
// The set of strategies is closed: Strategy enumerates them and
// Strategy.Routine binds each one to its evaluation routine. Text coming from
// the command line is converted once, at the boundary, by ParseStrategy.
package hedging

import (
	"context"
	"strings"

	apperrors "github.com/agbru/hedgesweep/internal/errors"
	"github.com/agbru/hedgesweep/internal/optionsdata"
)

// Strategy identifies a hedge strategy.
type Strategy int

const (
	// Delta neutralizes the portfolio delta with the underlying.
	Delta Strategy = iota + 1
	// DeltaVega neutralizes vega with a second option, then delta with the underlying.
	DeltaVega
)

// Strategies lists every supported strategy in canonical order.
func Strategies() []Strategy {
	return []Strategy{Delta, DeltaVega}
}

// String returns the canonical name ("delta", "delta_vega").
func (s Strategy) String() string {
	switch s {
	case Delta:
		return "delta"
	case DeltaVega:
		return "delta_vega"
	default:
		return "unknown"
	}
}

// MarshalText encodes the strategy by its canonical name.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, apperrors.UnknownStrategyError{Name: s.String()}
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a strategy name, accepting either spelling.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Valid reports whether s is one of the supported strategies.
func (s Strategy) Valid() bool {
	return s == Delta || s == DeltaVega
}

// CanonicalName normalizes a user-supplied strategy name: hyphens become
// underscores, so "delta-vega" and "delta_vega" are the same strategy.
func CanonicalName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// ParseStrategy converts a strategy name into a Strategy.
// Unknown names yield an apperrors.UnknownStrategyError.
func ParseStrategy(name string) (Strategy, error) {
	switch CanonicalName(name) {
	case "delta":
		return Delta, nil
	case "delta_vega":
		return DeltaVega, nil
	default:
		return 0, apperrors.UnknownStrategyError{Name: CanonicalName(name)}
	}
}

// Routine evaluates one strategy on one dataset of src for the given
// portfolio size and rebalancing schedule (in trading days). A routine is a
// pure function of its arguments and only reads src.
type Routine func(ctx context.Context, src optionsdata.Source, dataset string, portfolioSize, schedule int) (Stats, error)

// Routine returns the evaluation routine bound to s.
func (s Strategy) Routine() (Routine, error) {
	switch s {
	case Delta:
		return DeltaHedge, nil
	case DeltaVega:
		return DeltaVegaHedge, nil
	default:
		return nil, apperrors.UnknownStrategyError{Name: s.String()}
	}
}
