package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
	"github.com/Veraticus/hourglass/internal/tracker"
)

type startRequest struct {
	CategoryID string   `json:"categoryId" validate:"required"`
	TaskIDs    []string `json:"taskIds"`
}

type stopRequest struct {
	Notes *string `json:"notes" validate:"omitnil,max=2000"`
}

type createEntryRequest struct {
	EndTime    *time.Time `json:"endTime" validate:"required"`
	IsManual   *bool      `json:"isManual"`
	StartTime  time.Time  `json:"startTime" validate:"required"`
	CategoryID string     `json:"categoryId" validate:"required"`
	Notes      string     `json:"notes" validate:"max=2000"`
	TaskIDs    []string   `json:"taskIds"`
}

type updateEntryRequest struct {
	CategoryID *string    `json:"categoryId"`
	StartTime  *time.Time `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	Notes      *string    `json:"notes" validate:"omitnil,max=2000"`
	IsManual   *bool      `json:"isManual"`
	TaskIDs    []string   `json:"taskIds"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.EntryFilter{CategoryID: q.Get("categoryId")}

	v := &common.ValidationError{}
	if raw := q.Get("startDate"); raw != "" {
		t, ok := parseBound(raw, s.loc, false)
		if !ok {
			v.Add("startDate", "must be RFC3339 or YYYY-MM-DD")
		}
		filter.StartDate = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, ok := parseBound(raw, s.loc, true)
		if !ok {
			v.Add("endDate", "must be RFC3339 or YYYY-MM-DD")
		}
		filter.EndDate = &t
	}
	if err := v.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := s.tracker.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// parseBound accepts RFC3339 or a date; a date end bound covers the whole day.
func parseBound(raw string, loc *time.Location, end bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	day, err := time.ParseInLocation(model.DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	if end {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), true
	}
	return day, true
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.tracker.CreateManual(r.Context(), userID(r), tracker.ManualInput{
		CategoryID: req.CategoryID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
		IsManual:   req.IsManual,
		TaskIDs:    req.TaskIDs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.tracker.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req updateEntryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.tracker.Update(r.Context(), userID(r), chi.URLParam(r, "id"), tracker.Patch{
		CategoryID: req.CategoryID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
		IsManual:   req.IsManual,
		TaskIDs:    req.TaskIDs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Entry deleted"})
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.tracker.Start(r.Context(), userID(r), tracker.StartInput{
		CategoryID: req.CategoryID,
		TaskIDs:    req.TaskIDs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.tracker.Stop(r.Context(), userID(r), req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleActiveTimer(w http.ResponseWriter, r *http.Request) {
	entry, err := s.tracker.Active(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	// A nil entry encodes as JSON null.
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleAbandonTimer(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Abandon(r.Context(), userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
