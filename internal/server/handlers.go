package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/dipscan/internal/analysis"
	"github.com/aristath/dipscan/internal/marketdata"
	"github.com/aristath/dipscan/internal/options"
	"github.com/aristath/dipscan/internal/scoring"
	"github.com/aristath/dipscan/internal/screener"
)

// handleRoot handles GET / requests
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"name":    "dipscan",
		"version": Version,
	})
}

// handleHealth handles GET /health requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type checkDipRequest struct {
	Symbol string `json:"symbol"`
}

type checkDipResponse struct {
	Snapshot  snapshotView       `json:"snapshot"`
	Breakdown *scoring.Breakdown `json:"breakdown"`
	Rationale []string           `json:"rationale"`
}

// snapshotView augments the raw snapshot with the derived day change so
// clients do not recompute it.
type snapshotView struct {
	*analysis.Snapshot
	DayChangePct float64 `json:"day_change_pct"`
}

// handleCheckDip handles POST /api/check-dip requests. It runs the full
// pipeline for one symbol: snapshot, score, credit estimate, tier.
func (s *Server) handleCheckDip(w http.ResponseWriter, r *http.Request) {
	var req checkDipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" {
		s.respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	snap, err := s.analysis.Analyze(r.Context(), req.Symbol)
	if err != nil {
		switch {
		case errors.Is(err, marketdata.ErrUnsupportedSymbol):
			s.respondError(w, http.StatusBadRequest, "unsupported symbol")
		case errors.Is(err, marketdata.ErrDataUnavailable):
			s.respondError(w, http.StatusNotFound, "no price data for symbol")
		default:
			s.log.Error().Err(err).Str("symbol", req.Symbol).Msg("Check-dip analysis failed")
			s.respondError(w, http.StatusBadGateway, "failed to analyze symbol")
		}
		return
	}

	breakdown := scoring.Score(snap)
	credit := options.EstimateSpreadCredit(snap.CurrentPrice, snap.Volatility.Value)
	breakdown.Grade(credit)

	s.respondJSON(w, http.StatusOK, checkDipResponse{
		Snapshot:  snapshotView{Snapshot: snap, DayChangePct: snap.DayChangePct()},
		Breakdown: breakdown,
		Rationale: breakdown.Rationale(),
	})
}

type screenRequest struct {
	Period       string  `json:"period"`
	MaxRSI       float64 `json:"max_rsi"`
	MinDecline   float64 `json:"min_decline"`
	MinVolume    int64   `json:"min_volume"`
	MaxResults   int     `json:"max_results"`
	ForceRefresh bool    `json:"force_refresh"`
}

func (req screenRequest) filters() (screener.Filters, error) {
	period, err := screener.ParsePeriod(req.Period)
	if err != nil {
		return screener.Filters{}, err
	}
	return screener.Filters{
		Period:       period,
		MaxRSI:       req.MaxRSI,
		MinDecline:   req.MinDecline,
		MinVolume:    req.MinVolume,
		MaxResults:   req.MaxResults,
		ForceRefresh: req.ForceRefresh,
	}, nil
}

// handleScreen handles POST /api/screen requests.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	filters, err := req.filters()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := s.screener.Screen(r.Context(), filters)
	if err != nil {
		s.log.Error().Err(err).Msg("Screen failed")
		s.respondError(w, http.StatusInternalServerError, "screen failed")
		return
	}

	s.respondJSON(w, http.StatusOK, batch)
}

// handleQuickScreen handles GET /api/screen/quick requests.
func (s *Server) handleQuickScreen(w http.ResponseWriter, r *http.Request) {
	batch, err := s.screener.QuickScreen(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Quick screen failed")
		s.respondError(w, http.StatusInternalServerError, "quick screen failed")
		return
	}
	s.respondJSON(w, http.StatusOK, batch)
}
