//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// Package optionsdata provides the read-only options chains the hedging
// routines are evaluated on. A chain is organized in sheets, one per
// dataset identifier, each holding consecutive trading days.
package optionsdata

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// ErrSheetNotFound is returned when a requested sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Source is the data collaborator shared by every worker of a sweep.
// Implementations must be safe for concurrent readers and must not change
// after construction.
type Source interface {
	// SheetNames returns the dataset identifiers in their natural order.
	SheetNames() []string
	// Sheet returns the named sheet or an error wrapping ErrSheetNotFound.
	Sheet(name string) (*Sheet, error)
}

// Quote is one call option observation.
type Quote struct {
	Strike       float64
	DaysToExpiry int
	Price        float64
	ImpliedVol   float64
}

// Day is the market snapshot of one trading day.
type Day struct {
	Date  time.Time
	Spot  float64
	Rate  float64
	Chain []Quote
}

// Sheet is one dataset: a run of trading days, oldest first.
type Sheet struct {
	Name string
	Days []Day
}

// Expiries returns the distinct days-to-expiry in the chain, nearest first.
func (d Day) Expiries() []int {
	out := make([]int, 0, 2)
	for _, q := range d.Chain {
		if !slices.Contains(out, q.DaysToExpiry) {
			out = append(out, q.DaysToExpiry)
		}
	}
	slices.Sort(out)
	return out
}

// Find returns the quote with the given strike and expiry.
func (d Day) Find(strike float64, daysToExpiry int) (Quote, bool) {
	for _, q := range d.Chain {
		if q.DaysToExpiry == daysToExpiry && q.Strike == strike {
			return q, true
		}
	}
	return Quote{}, false
}

// NearestStrikes returns up to n quotes of one expiry whose strikes are
// closest to the spot. Ties go to the lower strike.
func (d Day) NearestStrikes(daysToExpiry, n int) []Quote {
	var series []Quote
	for _, q := range d.Chain {
		if q.DaysToExpiry == daysToExpiry {
			series = append(series, q)
		}
	}
	slices.SortStableFunc(series, func(a, b Quote) int {
		da, db := math.Abs(a.Strike-d.Spot), math.Abs(b.Strike-d.Spot)
		if c := cmp.Compare(da, db); c != 0 {
			return c
		}
		return cmp.Compare(a.Strike, b.Strike)
	})
	if len(series) > n {
		series = series[:n]
	}
	return series
}

// MemorySource is an immutable in-memory Source. Both the synthetic
// generator and the CSV loader produce one.
type MemorySource struct {
	names  []string
	sheets map[string]*Sheet
}

// NewMemorySource indexes the given sheets by name. Names are sorted.
func NewMemorySource(sheets []*Sheet) *MemorySource {
	src := &MemorySource{sheets: make(map[string]*Sheet, len(sheets))}
	for _, s := range sheets {
		src.names = append(src.names, s.Name)
		src.sheets[s.Name] = s
	}
	slices.Sort(src.names)
	return src
}

func (m *MemorySource) SheetNames() []string {
	return slices.Clone(m.names)
}

func (m *MemorySource) Sheet(name string) (*Sheet, error) {
	s, ok := m.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return s, nil
}

// filtered restricts a Source to a subset of its sheets.
type filtered struct {
	Source
	names []string
}

// Filter restricts src to the requested sheet names, keeping the source order.
// An empty request returns src unchanged. Unknown names are an error.
func Filter(src Source, names []string) (Source, error) {
	if len(names) == 0 {
		return src, nil
	}
	available := src.SheetNames()
	for _, n := range names {
		if !slices.Contains(available, n) {
			return nil, fmt.Errorf("%w: %q (available: %d sheets)", ErrSheetNotFound, n, len(available))
		}
	}
	keep := slices.DeleteFunc(available, func(n string) bool {
		return !slices.Contains(names, n)
	})
	return &filtered{Source: src, names: keep}, nil
}

func (f *filtered) SheetNames() []string {
	return slices.Clone(f.names)
}

func (f *filtered) Sheet(name string) (*Sheet, error) {
	if !slices.Contains(f.names, name) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return f.Source.Sheet(name)
}
