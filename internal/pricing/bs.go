// Package pricing implements the Black-Scholes formulas used to value and
// hedge European call options.
package pricing

import "math"

// TradingDaysPerYear converts day counts in the options chain to year fractions.
const TradingDaysPerYear = 252.0

const sqrt2Pi = 2.5066282746310002

// YearFraction converts a number of trading days to years.
func YearFraction(days int) float64 {
	return float64(days) / TradingDaysPerYear
}

// CallPrice returns the Black-Scholes price of a European call.
//
// Parameters:
//   - S: spot price of the underlying
//   - K: strike price
//   - T: time to expiry in years
//   - r: continuously compounded risk-free rate
//   - sigma: annualized volatility
//
// When T or sigma is not positive the intrinsic value is returned.
func CallPrice(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return math.Max(0, S-K)
	}
	d1, d2 := d1d2(S, K, T, r, sigma)
	return S*NormCDF(d1) - K*math.Exp(-r*T)*NormCDF(d2)
}

// CallDelta returns ∂C/∂S. At or past expiry it is the step function of moneyness.
func CallDelta(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		if S > K {
			return 1
		}
		return 0
	}
	d1, _ := d1d2(S, K, T, r, sigma)
	return NormCDF(d1)
}

// Vega returns ∂C/∂σ (per unit of volatility, not per percentage point).
// Returns 0 if T or sigma is non-positive.
func Vega(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return 0
	}
	d1, _ := d1d2(S, K, T, r, sigma)
	return S * NormPDF(d1) * math.Sqrt(T)
}

func d1d2(S, K, T, r, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

// NormPDF is the standard normal density.
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
