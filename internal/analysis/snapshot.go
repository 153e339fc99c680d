// Package analysis turns raw price history into the per-instrument snapshot
// the scoring engine consumes.
package analysis

import "time"

// VolatilityReading is the market-wide volatility context attached to every
// snapshot. Estimated is set when the reading is a synthetic stand-in
// because the index could not be fetched.
type VolatilityReading struct {
	Value     float64 `json:"value"`
	Estimated bool    `json:"estimated"`
}

// Snapshot captures everything the scoring engine needs to know about one
// instrument at one point in time. Indicator fields are nil pointers when
// the history is too short to compute them; that is ordinary, not an error.
type Snapshot struct {
	Symbol        string  `json:"symbol" msgpack:"symbol"`
	CurrentPrice  float64 `json:"current_price" msgpack:"current_price"`
	PreviousClose float64 `json:"previous_close" msgpack:"previous_close"`

	RSI             *float64 `json:"rsi" msgpack:"rsi"`
	Drop5D          *float64 `json:"drop_5d" msgpack:"drop_5d"`
	Drop10D         *float64 `json:"drop_10d" msgpack:"drop_10d"`
	MaxDayDrop30D   *float64 `json:"max_day_drop_30d" msgpack:"max_day_drop_30d"`
	DistanceFromLow *float64 `json:"distance_from_10d_low" msgpack:"distance_from_10d_low"`
	MA200           *float64 `json:"ma_200" msgpack:"ma_200"`
	PriceVsMA200    *float64 `json:"price_vs_ma_200" msgpack:"price_vs_ma_200"`
	DaysOversold    int      `json:"days_oversold" msgpack:"days_oversold"`
	AvgVolume       int64    `json:"avg_volume" msgpack:"avg_volume"`

	Volatility VolatilityReading `json:"volatility" msgpack:"volatility"`

	AsOf time.Time `json:"as_of" msgpack:"as_of"`
}

// DayChangePct is today's move relative to the previous close, in percent.
func (s *Snapshot) DayChangePct() float64 {
	if s.PreviousClose == 0 {
		return 0
	}
	return (s.CurrentPrice - s.PreviousClose) / s.PreviousClose * 100
}
