// Package scoring converts an instrument snapshot into a play/pass decision
// with a confidence score, quality tier, and human-readable rationale.
package scoring

import (
	"fmt"

	"github.com/aristath/dipscan/internal/analysis"
)

// Factor names, in evaluation order.
const (
	FactorRSI         = "rsi"
	FactorVolatility  = "volatility"
	FactorDecline     = "decline"
	FactorProximity   = "proximity"
	FactorTrend       = "trend"
	FactorPersistence = "persistence"
)

// Quality labels for the gradeable factors.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityWeak      = "weak"
	QualityPoor      = "poor"
	QualityUnknown   = "unknown"
)

// Contribution is one factor's share of the score.
type Contribution struct {
	Factor      string  `json:"factor"`
	Points      float64 `json:"points"`
	Description string  `json:"description,omitempty"`
	Quality     string  `json:"quality,omitempty"`
	Signal      string  `json:"signal,omitempty"` // non-empty marks a strong entry signal
}

// rule is one row of a factor's threshold table. Tables are evaluated top
// to bottom, first match wins.
type rule struct {
	threshold float64
	points    float64
	desc      string // format string taking the measured value
	quality   string
	signal    string
}

// rsiRules: lower is better; matched as value <= threshold.
var rsiRules = []rule{
	{20, 0.35, "Extreme oversold RSI (%.1f)", QualityExcellent, "EXTREME_OVERSOLD"},
	{25, 0.30, "Severe oversold RSI (%.1f)", QualityExcellent, "SEVERE_OVERSOLD"},
	{30, 0.25, "Oversold RSI (%.1f)", QualityGood, "OVERSOLD"},
	{35, 0.15, "RSI approaching oversold (%.1f)", QualityFair, ""},
	{40, 0.05, "Mild RSI weakness (%.1f)", QualityWeak, ""},
}

// volatilityRules: higher is better; matched as value >= threshold. The
// table is exhaustive, a calm market still contributes a little.
var volatilityRules = []rule{
	{25, 0.30, "Elevated market fear (VIX %.1f)", QualityExcellent, ""},
	{20, 0.25, "Raised market volatility (VIX %.1f)", QualityGood, ""},
	{18, 0.20, "Above-average volatility (VIX %.1f)", QualityGood, ""},
	{16, 0.10, "Normal volatility (VIX %.1f)", QualityFair, ""},
	{0, 0.05, "Calm market (VIX %.1f)", QualityWeak, ""},
}

// Decline magnitude is a priority cascade over four measures: the sharper,
// shorter-horizon drops outrank the slower ones, and only the first
// matching category scores. Drops are negative percentages; thresholds
// below are magnitudes.
var decline1DayRules = []rule{
	{8, 0.30, "Major single-day drop (%.1f%%)", QualityExcellent, "MAJOR_DROP"},
	{5, 0.25, "Sharp single-day drop (%.1f%%)", QualityGood, "SHARP_DROP"},
}

var decline5DayRules = []rule{
	{10, 0.28, "Steep 5-day decline (%.1f%%)", QualityExcellent, "STEEP_5D_DECLINE"},
	{7, 0.23, "Significant 5-day decline (%.1f%%)", QualityGood, "5D_DECLINE"},
}

var decline10DayRules = []rule{
	{5, 0.18, "Extended 10-day decline (%.1f%%)", QualityFair, ""},
}

var declineMaxDayRules = []rule{
	{8, 0.20, "Major down day in the last month (%.1f%%)", QualityGood, ""},
	{5, 0.15, "Sharp down day in the last month (%.1f%%)", QualityFair, ""},
}

// proximityRules: distance above the 10-day low in percent; lower is
// better, matched as value <= threshold.
var proximityRules = []rule{
	{1, 0.20, "At the 10-day low (%.1f%% above)", QualityExcellent, ""},
	{3, 0.18, "Near the 10-day low (%.1f%% above)", QualityGood, ""},
	{5, 0.15, "Close to the 10-day low (%.1f%% above)", QualityFair, ""},
	{8, 0.10, "Within reach of the 10-day low (%.1f%% above)", QualityWeak, ""},
}

// evalRSI scores the RSI factor. A missing RSI is "unknown", never a
// score-bearing default.
func evalRSI(rsi *float64) Contribution {
	c := Contribution{Factor: FactorRSI, Quality: QualityUnknown}
	if rsi == nil {
		c.Description = "RSI unavailable"
		return c
	}
	for _, r := range rsiRules {
		if *rsi <= r.threshold {
			c.Points = r.points
			c.Description = fmt.Sprintf(r.desc, *rsi)
			c.Quality = r.quality
			c.Signal = r.signal
			return c
		}
	}
	c.Quality = QualityPoor
	return c
}

// evalVolatility scores the market volatility context. The reading always
// carries a value (synthetic when the index was unreachable), so this
// factor never reports unknown.
func evalVolatility(reading analysis.VolatilityReading) Contribution {
	c := Contribution{Factor: FactorVolatility}
	for _, r := range volatilityRules {
		if reading.Value >= r.threshold {
			c.Points = r.points
			c.Description = fmt.Sprintf(r.desc, reading.Value)
			c.Quality = r.quality
			break
		}
	}
	if reading.Estimated {
		c.Description += " [estimated]"
	}
	return c
}

// evalDecline walks the priority cascade. Exactly one category can score.
func evalDecline(snap *analysis.Snapshot) Contribution {
	c := Contribution{Factor: FactorDecline, Quality: QualityPoor}

	if dayChange := snap.DayChangePct(); snap.PreviousClose > 0 {
		if match, ok := matchDrop(decline1DayRules, dayChange); ok {
			return fillDecline(c, match, dayChange)
		}
	}
	if snap.Drop5D != nil {
		if match, ok := matchDrop(decline5DayRules, *snap.Drop5D); ok {
			return fillDecline(c, match, *snap.Drop5D)
		}
	}
	if snap.Drop10D != nil {
		if match, ok := matchDrop(decline10DayRules, *snap.Drop10D); ok {
			return fillDecline(c, match, *snap.Drop10D)
		}
	}
	if snap.MaxDayDrop30D != nil {
		if match, ok := matchDrop(declineMaxDayRules, *snap.MaxDayDrop30D); ok {
			return fillDecline(c, match, *snap.MaxDayDrop30D)
		}
	}
	return c
}

// matchDrop matches a negative percentage change against magnitude rules.
func matchDrop(rules []rule, change float64) (rule, bool) {
	for _, r := range rules {
		if change <= -r.threshold {
			return r, true
		}
	}
	return rule{}, false
}

func fillDecline(c Contribution, r rule, value float64) Contribution {
	c.Points = r.points
	c.Description = fmt.Sprintf(r.desc, value)
	c.Quality = r.quality
	c.Signal = r.signal
	return c
}

// evalProximity scores distance above the 10-day low.
func evalProximity(distance *float64) Contribution {
	c := Contribution{Factor: FactorProximity, Quality: QualityUnknown}
	if distance == nil {
		c.Description = "10-day low unavailable"
		return c
	}
	for _, r := range proximityRules {
		if *distance <= r.threshold {
			c.Points = r.points
			c.Description = fmt.Sprintf(r.desc, *distance)
			c.Quality = r.quality
			return c
		}
	}
	c.Quality = QualityPoor
	return c
}

// evalTrend scores price relative to the 200-day MA. An absent MA scores
// zero as "unknown", which is distinct from a deep-below-trend "poor" that
// still earns a token contribution.
func evalTrend(priceVsMA *float64) Contribution {
	c := Contribution{Factor: FactorTrend, Quality: QualityUnknown}
	if priceVsMA == nil {
		c.Description = "200-day MA unavailable"
		return c
	}

	v := *priceVsMA
	switch {
	case v >= -5 && v <= 5:
		c.Points = 0.15
		c.Description = fmt.Sprintf("At the 200-day MA (%+.1f%%)", v)
		c.Quality = QualityExcellent
	case v >= -10 && v < 0:
		c.Points = 0.12
		c.Description = fmt.Sprintf("Modestly below the 200-day MA (%+.1f%%)", v)
		c.Quality = QualityGood
	case v >= -15:
		c.Points = 0.08
		c.Description = fmt.Sprintf("Below the 200-day MA (%+.1f%%)", v)
		c.Quality = QualityFair
	default:
		c.Points = 0.02
		c.Description = fmt.Sprintf("Deep below the 200-day MA (%+.1f%%)", v)
		c.Quality = QualityPoor
	}
	return c
}

// evalPersistence scores consecutive oversold sessions.
func evalPersistence(days int) Contribution {
	c := Contribution{Factor: FactorPersistence}
	switch {
	case days >= 3:
		c.Points = 0.10
		c.Description = fmt.Sprintf("Oversold for %d consecutive sessions", days)
	case days == 2:
		c.Points = 0.08
		c.Description = "Oversold for 2 consecutive sessions"
	case days == 1:
		c.Points = 0.05
		c.Description = "First oversold session"
	}
	return c
}
