package optionsdata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/agbru/hedgesweep/internal/pricing"
)

// Synthetic market parameters. The index level and volatility regime are
// loosely modeled on the S&P 100 during 2010.
const (
	syntheticSpot      = 500.0
	syntheticDrift     = 0.05
	syntheticRate      = 0.0025
	syntheticLongVol   = 0.22
	syntheticVolOfVol  = 0.012
	syntheticMeanRev   = 0.08
	strikeStep         = 5.0
	strikesEachSide    = 10
	frontExpiryPadding = 15 // trading days between the last sheet day and the front expiry
	expirySpacing      = 21 // trading days between the front and next expiries
)

// NewSynthetic builds twelve monthly sheets ("2010-01" … "2010-12" for
// year 2010) from a deterministic geometric Brownian motion with a
// mean-reverting volatility. Each day carries two expiries, front and next
// month, over a fixed strike grid centered on the month's opening level.
// The same seed and year always yield the same data.
func NewSynthetic(seed int64, year int) *MemorySource {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(year)))
	spot, vol := syntheticSpot, syntheticLongVol
	dt := 1.0 / pricing.TradingDaysPerYear

	sheets := make([]*Sheet, 0, 12)
	for month := time.January; month <= time.December; month++ {
		dates := tradingDays(year, month)
		sheet := &Sheet{Name: fmt.Sprintf("%04d-%02d", year, int(month)), Days: make([]Day, 0, len(dates))}
		center := math.Round(spot/strikeStep) * strikeStep

		for i, date := range dates {
			if i > 0 || month > time.January {
				z := rng.NormFloat64()
				spot *= math.Exp((syntheticDrift-0.5*vol*vol)*dt + vol*math.Sqrt(dt)*z)
				vol += syntheticMeanRev*(syntheticLongVol-vol) + syntheticVolOfVol*rng.NormFloat64()
				vol = min(max(vol, 0.08), 0.6)
			}

			front := len(dates) - i + frontExpiryPadding
			day := Day{Date: date, Spot: round(spot, 2), Rate: syntheticRate}
			for _, dte := range []int{front, front + expirySpacing} {
				termVol := vol
				if dte != front {
					termVol += 0.01
				}
				for k := -strikesEachSide; k <= strikesEachSide; k++ {
					strike := center + float64(k)*strikeStep
					iv := smile(termVol, strike, day.Spot)
					price := pricing.CallPrice(day.Spot, strike, pricing.YearFraction(dte), day.Rate, iv)
					day.Chain = append(day.Chain, Quote{
						Strike:       strike,
						DaysToExpiry: dte,
						Price:        round(price, 4),
						ImpliedVol:   round(iv, 6),
					})
				}
			}
			sheet.Days = append(sheet.Days, day)
		}
		sheets = append(sheets, sheet)
	}
	return NewMemorySource(sheets)
}

// smile skews the at-the-money volatility by log-moneyness.
func smile(atmVol, strike, spot float64) float64 {
	m := math.Log(strike / spot)
	return max(atmVol*(1-0.6*m+1.5*m*m), 0.05)
}

// tradingDays returns the weekdays of a month in UTC.
func tradingDays(year int, month time.Month) []time.Time {
	var days []time.Time
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
