package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aristath/dipscan/internal/screener"
)

// handleScreenStream handles GET /api/screen/stream requests (SSE). Filters
// arrive as query parameters; every screen event is written as one SSE data
// frame as soon as it happens.
func (s *Server) handleScreenStream(w http.ResponseWriter, r *http.Request) {
	filters, batchSize, err := streamParams(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events := s.screener.StreamScreen(r.Context(), filters, batchSize)
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to marshal stream event")
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			// Client went away; the context cancellation stops the scan.
			return
		}
		flusher.Flush()
	}
}

// streamParams parses the stream filters from the query string.
func streamParams(r *http.Request) (screener.Filters, int, error) {
	q := r.URL.Query()

	period, err := screener.ParsePeriod(q.Get("period"))
	if err != nil {
		return screener.Filters{}, 0, err
	}

	f := screener.Filters{Period: period}
	if v := q.Get("max_rsi"); v != "" {
		if f.MaxRSI, err = strconv.ParseFloat(v, 64); err != nil {
			return screener.Filters{}, 0, fmt.Errorf("invalid max_rsi: %s", v)
		}
	}
	if v := q.Get("min_decline"); v != "" {
		if f.MinDecline, err = strconv.ParseFloat(v, 64); err != nil {
			return screener.Filters{}, 0, fmt.Errorf("invalid min_decline: %s", v)
		}
	}
	if v := q.Get("min_volume"); v != "" {
		if f.MinVolume, err = strconv.ParseInt(v, 10, 64); err != nil {
			return screener.Filters{}, 0, fmt.Errorf("invalid min_volume: %s", v)
		}
	}
	if v := q.Get("max_results"); v != "" {
		if f.MaxResults, err = strconv.Atoi(v); err != nil {
			return screener.Filters{}, 0, fmt.Errorf("invalid max_results: %s", v)
		}
	}

	batchSize := 0
	if v := q.Get("batch_size"); v != "" {
		if batchSize, err = strconv.Atoi(v); err != nil {
			return screener.Filters{}, 0, fmt.Errorf("invalid batch_size: %s", v)
		}
	}

	return f, batchSize, nil
}
