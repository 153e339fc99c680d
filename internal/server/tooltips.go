package server

import "net/http"

// Tooltip is the display metadata for one output field.
type Tooltip struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// tooltips explains every field the analysis and scoring responses expose.
// Served static; clients render these next to the numbers.
var tooltips = map[string]Tooltip{
	"rsi": {
		Title: "RSI (14)",
		Text:  "Relative Strength Index over 14 sessions. Readings at or below 30 mark oversold conditions; the deeper below, the stronger the dip signal.",
	},
	"drop_5d": {
		Title: "5-day drop",
		Text:  "Decline from the highest close of the last 5 sessions, in percent.",
	},
	"drop_10d": {
		Title: "10-day drop",
		Text:  "Decline from the highest close of the last 10 sessions, in percent.",
	},
	"max_day_drop_30d": {
		Title: "Worst day (30d)",
		Text:  "The single worst day-over-day move within the last 30 sessions, in percent.",
	},
	"distance_from_10d_low": {
		Title: "Distance from 10-day low",
		Text:  "How far the current price sits above the lowest low of the last 10 sessions. Near zero means the instrument trades at its recent floor.",
	},
	"ma_200": {
		Title: "200-day moving average",
		Text:  "Simple moving average of the last 200 closes. Absent when the available history is shorter.",
	},
	"price_vs_ma_200": {
		Title: "Price vs 200-day MA",
		Text:  "Current price relative to the 200-day moving average, in percent. Values near zero indicate a dip inside an intact long-term trend.",
	},
	"days_oversold": {
		Title: "Days oversold",
		Text:  "Consecutive sessions with RSI at or below 30, counted back from today and capped at 10. Persistence distinguishes a washout from a one-day wobble.",
	},
	"avg_volume": {
		Title: "Average volume",
		Text:  "Mean daily share volume over the last 30 sessions.",
	},
	"volatility": {
		Title: "Market volatility",
		Text:  "The market-wide volatility index level. Elevated readings mean richer option premium. Marked estimated when the index could not be fetched and a synthetic stand-in was used.",
	},
	"confidence": {
		Title: "Confidence",
		Text:  "Weighted sum of all scoring factors, clamped to 0-1. A reading of 0.6 or higher with at least one hard dip signal makes the instrument actionable.",
	},
	"tier": {
		Title: "Tier",
		Text:  "Quality grade for actionable dips: A requires 0.8+ confidence and $100+ estimated credit, B requires 0.7+ confidence with $80-100 credit, C covers the rest above the decision threshold. PASS means no trade.",
	},
	"credit": {
		Title: "Estimated credit",
		Text:  "Modelled credit in dollars per contract for a 2.5-wide bull put spread with the short strike 10% below spot and roughly 30 days to expiry.",
	},
	"decline_pct": {
		Title: "Decline",
		Text:  "The instrument's decline over the selected period, in percent. Measured as the worst of: drop from the period high, worst single day, and start-to-end change.",
	},
}

// handleTooltips handles GET /api/tooltips requests.
func (s *Server) handleTooltips(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, tooltips)
}
