package scoring

import (
	"fmt"

	"github.com/aristath/dipscan/internal/analysis"
)

// PlayThreshold is the minimum confidence for an actionable decision.
const PlayThreshold = 0.6

const (
	maxReasons    = 6
	maxSignalTags = 3
)

// Breakdown is the full scoring result for one snapshot.
type Breakdown struct {
	Symbol        string            `json:"symbol"`
	RawScore      float64           `json:"raw_score"`
	Confidence    float64           `json:"confidence"` // raw score clamped to [0,1]
	Play          bool              `json:"play"`
	Tier          Tier              `json:"tier"`
	Credit        float64           `json:"credit"`
	Contributions []Contribution    `json:"contributions"`
	SignalTags    []string          `json:"signal_tags,omitempty"`
	Reasons       []string          `json:"reasons"`
	Quality       map[string]string `json:"quality"`
}

// Score evaluates all six factors against the snapshot. Pure: equal
// snapshots always produce equal breakdowns. Tier is left at PASS; callers
// holding a credit estimate apply ClassifyTier afterwards.
func Score(snap *analysis.Snapshot) *Breakdown {
	contribs := []Contribution{
		evalRSI(snap.RSI),
		evalVolatility(snap.Volatility),
		evalDecline(snap),
		evalProximity(snap.DistanceFromLow),
		evalTrend(snap.PriceVsMA200),
		evalPersistence(snap.DaysOversold),
	}

	var raw float64
	var signalTags []string
	for _, c := range contribs {
		raw += c.Points
		if c.Signal != "" && len(signalTags) < maxSignalTags {
			signalTags = append(signalTags, c.Signal)
		}
	}

	confidence := raw
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	// High scores assembled purely from volatility, proximity, and trend
	// are not entries; the decision demands a real oversold or decline
	// signal.
	play := confidence >= PlayThreshold && len(signalTags) > 0

	b := &Breakdown{
		Symbol:        snap.Symbol,
		RawScore:      raw,
		Confidence:    confidence,
		Play:          play,
		Tier:          TierPass,
		Contributions: contribs,
		SignalTags:    signalTags,
		Quality:       make(map[string]string, 5),
	}

	for _, c := range contribs {
		if c.Points > 0 && len(b.Reasons) < maxReasons {
			b.Reasons = append(b.Reasons, c.Description)
		}
		// Persistence is a streak counter, not a graded factor.
		if c.Factor != FactorPersistence {
			b.Quality[c.Factor] = c.Quality
		}
	}

	return b
}

// Rationale renders the ordered explanation: signal tags first when the
// decision is actionable, then the triggered reasons, then the per-factor
// quality grades.
func (b *Breakdown) Rationale() []string {
	var out []string
	if b.Play {
		out = append(out, b.SignalTags...)
	}
	out = append(out, b.Reasons...)
	for _, f := range []string{FactorRSI, FactorVolatility, FactorDecline, FactorProximity, FactorTrend} {
		if q, ok := b.Quality[f]; ok {
			out = append(out, fmt.Sprintf("%s: %s", f, q))
		}
	}
	return out
}
