package scoring

// Tier is the coarse quality grade for an actionable decision.
type Tier string

const (
	TierA    Tier = "A"
	TierB    Tier = "B"
	TierC    Tier = "C"
	TierPass Tier = "PASS"
)

// ClassifyTier grades an actionable decision by confidence and the
// estimated spread credit. Boundaries are inclusive: exactly 0.80
// confidence with exactly $100 credit is an A. Non-plays always PASS.
func ClassifyTier(confidence, credit float64, play bool) Tier {
	if !play {
		return TierPass
	}
	switch {
	case confidence >= 0.8 && credit >= 100:
		return TierA
	case confidence >= 0.7 && credit >= 80 && credit < 100:
		return TierB
	case confidence >= PlayThreshold:
		return TierC
	default:
		return TierPass
	}
}

// Grade applies ClassifyTier to the breakdown in place and records the
// credit estimate it used.
func (b *Breakdown) Grade(credit float64) {
	b.Credit = credit
	b.Tier = ClassifyTier(b.Confidence, credit, b.Play)
}
