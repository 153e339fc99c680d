// Package options estimates the credit available from a defined-risk bull
// put spread on a dipped instrument.
package options

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	riskFreeRate   = 0.05
	daysToExpiry   = 30.0
	spreadWidth    = 2.5
	shortStrikePct = 0.90 // short strike ~10% out of the money
	minVolatility  = 0.30
	lowVIXLevel    = 18.0
	lowVIXBoost    = 1.1
	creditFloor    = 80.0

	// FallbackCredit is returned whenever pricing cannot complete. A fixed
	// conservative figure keeps tiering deterministic when inputs are bad.
	FallbackCredit = 100.0
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// putPrice computes the Black-Scholes price of a European put.
func putPrice(spot, strike, t, rate, vol float64) (float64, error) {
	if spot <= 0 || strike <= 0 || t <= 0 || vol <= 0 {
		return 0, fmt.Errorf("invalid pricing inputs: spot=%.2f strike=%.2f t=%.4f vol=%.4f", spot, strike, t, vol)
	}

	d1 := (math.Log(spot/strike) + (rate+vol*vol/2)*t) / (vol * math.Sqrt(t))
	d2 := d1 - vol*math.Sqrt(t)

	price := strike*math.Exp(-rate*t)*stdNormal.CDF(-d2) - spot*stdNormal.CDF(-d1)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("pricing produced non-finite value")
	}
	return price, nil
}

// EstimateSpreadCredit estimates the credit, in dollars per contract, for a
// 2.5-wide bull put spread with the short strike 10% below spot and ~30
// days to expiry. Implied volatility is proxied as twice the VIX reading
// with a 30% floor; a calm market (VIX under 18) gets a skew boost because
// put skew holds up better there. The result never drops below the credit
// floor, and any pricing fault falls back to a fixed conservative estimate.
func EstimateSpreadCredit(price, vix float64) float64 {
	shortStrike := price * shortStrikePct
	longStrike := shortStrike - spreadWidth
	t := daysToExpiry / 365.0
	vol := math.Max(2*vix/100, minVolatility)

	shortPut, err := putPrice(price, shortStrike, t, riskFreeRate, vol)
	if err != nil {
		return FallbackCredit
	}
	longPut, err := putPrice(price, longStrike, t, riskFreeRate, vol)
	if err != nil {
		return FallbackCredit
	}

	credit := (shortPut - longPut) * 100
	if vix < lowVIXLevel {
		credit *= lowVIXBoost
	}
	if math.IsNaN(credit) || math.IsInf(credit, 0) {
		return FallbackCredit
	}
	if credit < creditFloor {
		credit = creditFloor
	}
	return credit
}
