package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Veraticus/hourglass/internal/common"
)

type userKey struct{}

// userID returns the authenticated user for the request.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

// WithUserID returns ctx carrying an authenticated user id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// authenticate rejects requests without a valid bearer token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			errorJSON(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		id, err := s.auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := WithUserID(r.Context(), id)
		ctx = common.WithLogger(ctx, common.Logger(ctx).With("user_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request and stores a request-scoped logger in the context.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		logger := slog.Default().With("request_id", reqID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(common.WithLogger(r.Context(), logger)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"bytes", ww.BytesWritten())
	})
}
