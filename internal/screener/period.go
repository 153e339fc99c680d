package screener

import (
	"fmt"
	"time"
)

// Period is the lookback window a screen measures declines over.
type Period string

const (
	PeriodToday Period = "today"
	Period1D    Period = "1d"
	Period3D    Period = "3d"
	Period1W    Period = "1w"
	Period2W    Period = "2w"
	Period1M    Period = "1m"
	Period3M    Period = "3m"
	PeriodYTD   Period = "ytd"
)

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodToday, Period1D, Period3D, Period1W, Period2W, Period1M, Period3M, PeriodYTD:
		return Period(s), nil
	case "":
		return Period1W, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Start returns the beginning of the period's window relative to now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case Period1D:
		return now.AddDate(0, 0, -1)
	case Period3D:
		return now.AddDate(0, 0, -3)
	case Period1W:
		return now.AddDate(0, 0, -7)
	case Period2W:
		return now.AddDate(0, 0, -14)
	case Period1M:
		return now.AddDate(0, -1, 0)
	case Period3M:
		return now.AddDate(0, -3, 0)
	case PeriodYTD:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return now.AddDate(0, 0, -7)
	}
}

// Lookback returns how much history to fetch so the window plus indicator
// warmup is covered.
func (p Period) Lookback(now time.Time) time.Duration {
	windowDays := int(now.Sub(p.Start(now)).Hours()/24) + 1
	// RSI(14) needs warmup beyond the window itself.
	days := windowDays + 30
	if days < 90 {
		days = 90
	}
	return time.Duration(days) * 24 * time.Hour
}

// ExtendedHours reports whether the period should include pre/post-market
// bars. Only intraday "today" screens care about the pre-market move.
func (p Period) ExtendedHours() bool {
	return p == PeriodToday
}
