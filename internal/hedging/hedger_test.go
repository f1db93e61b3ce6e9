package hedging

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/agbru/hedgesweep/internal/optionsdata"
	"github.com/agbru/hedgesweep/internal/optionsdata/mocks"
	"github.com/agbru/hedgesweep/internal/pricing"
	"github.com/golang/mock/gomock"
)

// buildSheet prices a Black-Scholes consistent chain for the given spot and
// volatility paths. Both expiries roll down one trading day per day.
func buildSheet(name string, spots, vols []float64) *optionsdata.Sheet {
	sheet := &optionsdata.Sheet{Name: name}
	start := time.Date(2010, 1, 4, 0, 0, 0, 0, time.UTC)
	for i, spot := range spots {
		day := optionsdata.Day{Date: start.AddDate(0, 0, i), Spot: spot, Rate: 0.01}
		for _, dte := range []int{25 - i, 46 - i} {
			for k := 90.0; k <= 110; k += 5 {
				day.Chain = append(day.Chain, optionsdata.Quote{
					Strike:       k,
					DaysToExpiry: dte,
					Price:        pricing.CallPrice(spot, k, pricing.YearFraction(dte), 0.01, vols[i]),
					ImpliedVol:   vols[i],
				})
			}
		}
		sheet.Days = append(sheet.Days, day)
	}
	return sheet
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDeltaHedge_ReducesSpotRisk(t *testing.T) {
	t.Parallel()
	spots := []float64{100, 101.2, 99.8, 100.9, 102.1, 101.0, 99.5, 100.4}
	src := optionsdata.NewMemorySource([]*optionsdata.Sheet{buildSheet("s", spots, constant(0.2, len(spots)))})

	stats, err := DeltaHedge(context.Background(), src, "s", 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Days != len(spots) || stats.Rebalances != len(spots)-1 {
		t.Errorf("Days = %d, Rebalances = %d", stats.Days, stats.Rebalances)
	}

	// The unhedged ATM call moves by roughly half the spot move.
	if stats.MaxAbsError > 0.2 {
		t.Errorf("daily delta hedging should leave only second-order error, max = %.4f", stats.MaxAbsError)
	}
	if stats.Strategy != Delta || stats.Dataset != "s" || stats.PortfolioSize != 1 || stats.Schedule != 1 {
		t.Errorf("task parameters not echoed: %+v", stats)
	}
}

func TestDeltaVegaHedge_ReducesVolRisk(t *testing.T) {
	t.Parallel()
	spots := constant(100, 4)
	vols := []float64{0.2, 0.2, 0.3, 0.3}
	src := optionsdata.NewMemorySource([]*optionsdata.Sheet{buildSheet("s", spots, vols)})

	delta, err := DeltaHedge(context.Background(), src, "s", 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	deltaVega, err := DeltaVegaHedge(context.Background(), src, "s", 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if delta.MaxAbsError < 1 {
		t.Errorf("a 10 vol point shock should hit the delta hedge, max = %.4f", delta.MaxAbsError)
	}
	if deltaVega.MaxAbsError >= delta.MaxAbsError/3 {
		t.Errorf("delta-vega max error %.4f should be well below delta max error %.4f", deltaVega.MaxAbsError, delta.MaxAbsError)
	}
}

func TestHedge_ScheduleControlsRebalances(t *testing.T) {
	t.Parallel()
	spots := []float64{100, 101, 102, 101, 100, 99, 98, 99, 100, 101}
	src := optionsdata.NewMemorySource([]*optionsdata.Sheet{buildSheet("s", spots, constant(0.25, len(spots)))})

	tests := []struct {
		schedule int
		want     int
	}{
		{1, 9},
		{3, 3},
		{5, 2},
		{10, 1},
	}
	for _, tt := range tests {
		stats, err := DeltaHedge(context.Background(), src, "s", 2, tt.schedule)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Rebalances != tt.want {
			t.Errorf("schedule %d: Rebalances = %d, want %d", tt.schedule, stats.Rebalances, tt.want)
		}
	}
}

func TestHedge_StatsConsistency(t *testing.T) {
	t.Parallel()
	src := optionsdata.NewSynthetic(3, 2010)
	stats, err := DeltaVegaHedge(context.Background(), src, "2010-04", 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.MSE < stats.MeanError*stats.MeanError-1e-12 {
		t.Errorf("MSE %.6f below squared mean %.6f", stats.MSE, stats.MeanError*stats.MeanError)
	}
	if stats.MaxAbsError < math.Abs(stats.MeanError) {
		t.Errorf("max abs error %.6f below |mean| %.6f", stats.MaxAbsError, stats.MeanError)
	}
	pnl, _ := stats.PnL.Float64()
	if want := stats.MeanError * float64(stats.Days-1); math.Abs(pnl-want) > 1e-3 {
		t.Errorf("PnL %.4f does not match accumulated error %.4f", pnl, want)
	}
	if math.Abs(stats.RMSE()-math.Sqrt(stats.MSE)) > 1e-12 {
		t.Error("RMSE must be the square root of MSE")
	}
}

func TestHedge_Errors(t *testing.T) {
	t.Parallel()
	spots := constant(100, 5)
	good := buildSheet("good", spots, constant(0.2, 5))

	oneExpiry := buildSheet("one-expiry", spots, constant(0.2, 5))
	for i := range oneExpiry.Days {
		oneExpiry.Days[i].Chain = oneExpiry.Days[i].Chain[:5]
	}
	gap := buildSheet("gap", spots, constant(0.2, 5))
	gap.Days[3].Chain = gap.Days[3].Chain[1:]
	short := buildSheet("short", spots[:1], constant(0.2, 1))

	src := optionsdata.NewMemorySource([]*optionsdata.Sheet{good, oneExpiry, gap, short})

	tests := []struct {
		name    string
		routine Routine
		dataset string
		size    int
		sched   int
		want    error
	}{
		{"unknown sheet", DeltaHedge, "missing", 1, 1, optionsdata.ErrSheetNotFound},
		{"single day", DeltaHedge, "short", 1, 1, ErrInsufficientData},
		{"too many options", DeltaHedge, "good", 6, 1, ErrInsufficientData},
		{"no hedge expiry", DeltaVegaHedge, "one-expiry", 1, 1, ErrInsufficientData},
		{"quote gap", DeltaHedge, "gap", 5, 1, ErrMissingQuote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.routine(context.Background(), src, tt.dataset, tt.size, tt.sched)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := DeltaHedge(context.Background(), src, "good", 0, 1); err == nil {
		t.Error("a zero portfolio size must be rejected")
	}
	if _, err := DeltaHedge(context.Background(), src, "one-expiry", 1, 1); err != nil {
		t.Errorf("a delta hedge needs a single expiry only, got %v", err)
	}
}

func TestHedge_ExpiredFrontMonthFails(t *testing.T) {
	t.Parallel()
	spots := []float64{100, 101, 102}
	sheet := &optionsdata.Sheet{Name: "roll"}
	start := time.Date(2010, 1, 27, 0, 0, 0, 0, time.UTC)
	for i, spot := range spots {
		day := optionsdata.Day{Date: start.AddDate(0, 0, i), Spot: spot, Rate: 0.01}
		expiries := []int{2 - i, 30 - i}
		if i == 2 {
			expiries = expiries[1:]
		}
		for _, dte := range expiries {
			day.Chain = append(day.Chain, optionsdata.Quote{
				Strike:       100,
				DaysToExpiry: dte,
				Price:        pricing.CallPrice(spot, 100, pricing.YearFraction(dte), 0.01, 0.2),
				ImpliedVol:   0.2,
			})
		}
		sheet.Days = append(sheet.Days, day)
	}
	src := optionsdata.NewMemorySource([]*optionsdata.Sheet{sheet})

	for _, routine := range []Routine{DeltaHedge, DeltaVegaHedge} {
		stats, err := routine(context.Background(), src, "roll", 1, 1)
		if !errors.Is(err, ErrMissingQuote) {
			t.Errorf("the held series expired on day 3, expected ErrMissingQuote, got %v (stats %v)", err, stats)
		}
	}
}

func TestHedge_TracksSeriesAcrossDays(t *testing.T) {
	t.Parallel()
	sheet := buildSheet("s", []float64{100, 100, 100}, constant(0.2, 3))
	// A new front month listed mid-sheet must not replace the held series.
	sheet.Days[2].Chain = append(sheet.Days[2].Chain, optionsdata.Quote{Strike: 100, DaysToExpiry: 3, Price: 50, ImpliedVol: 0.2})
	src := optionsdata.NewMemorySource([]*optionsdata.Sheet{sheet})

	stats, err := DeltaHedge(context.Background(), src, "s", 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.MaxAbsError > 1 {
		t.Errorf("the held option was repriced from another series, max error = %.4f", stats.MaxAbsError)
	}
}

func TestHedge_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := optionsdata.NewSynthetic(1, 2010)
	if _, err := DeltaHedge(ctx, src, "2010-01", 1, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHedge_UsesSourceReadOnly(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)

	sheet := buildSheet("2010-01", []float64{100, 100.5, 101}, constant(0.2, 3))
	src.EXPECT().Sheet("2010-01").Return(sheet, nil).Times(2)
	src.EXPECT().Sheet("2010-13").Return(nil, optionsdata.ErrSheetNotFound)

	for _, routine := range []Routine{DeltaHedge, DeltaVegaHedge} {
		if _, err := routine(context.Background(), src, "2010-01", 2, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := DeltaHedge(context.Background(), src, "2010-13", 1, 1); !errors.Is(err, optionsdata.ErrSheetNotFound) {
		t.Errorf("source error should propagate, got %v", err)
	}
	if sheet.Days[1].Spot != 100.5 {
		t.Error("routines must not mutate the sheet")
	}
}

func TestStats_String(t *testing.T) {
	t.Parallel()
	src := optionsdata.NewSynthetic(1, 2010)
	stats, err := DeltaHedge(context.Background(), src, "2010-02", 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	s := stats.String()
	for _, want := range []string{"delta", "2010-02", "size=1", "schedule=5", "pnl="} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
