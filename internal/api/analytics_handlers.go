package api

import (
	"net/http"

	"github.com/Veraticus/hourglass/internal/analytics"
)

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	days, err := s.analytics.Heatmap(r.Context(), userID(r), r.URL.Query().Get("categoryId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Stats(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	days, err := analytics.ParseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	shares, err := s.analytics.Distribution(r.Context(), userID(r), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days, err := analytics.ParseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.analytics.Trends(r.Context(), userID(r), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDayRating(w http.ResponseWriter, r *http.Request) {
	rating, err := s.analytics.DayRating(r.Context(), userID(r), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}
