package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Veraticus/hourglass/internal/common"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string              `json:"error"`
	Fields []common.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: common.ErrValidation.Error(), Fields: verr.Fields})
	case errors.Is(err, common.ErrValidation):
		errorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		errorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrConflict):
		errorJSON(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		errorJSON(w, http.StatusUnauthorized, err.Error())
	default:
		common.LogError(r.Context(), err, "request failed", common.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		})
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads the request body into v. An empty body is allowed when optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	defer r.Body.Close()

	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && optional:
		return nil
	default:
		return common.NewValidationError("body", "must be valid JSON")
	}
}
