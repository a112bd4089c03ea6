// Package api exposes hourglass over a JSON REST interface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Veraticus/hourglass/internal/analytics"
	"github.com/Veraticus/hourglass/internal/auth"
	"github.com/Veraticus/hourglass/internal/planner"
	"github.com/Veraticus/hourglass/internal/tracker"
)

// Server holds the services behind the HTTP handlers.
type Server struct {
	auth      *auth.Service
	tracker   *tracker.Tracker
	planner   *planner.Planner
	analytics *analytics.Engine
	loc       *time.Location
}

// Options configures the router.
type Options struct {
	CORSOrigins []string
}

// NewServer wires the services into a server.
func NewServer(authSvc *auth.Service, tr *tracker.Tracker, pl *planner.Planner, engine *analytics.Engine) *Server {
	return &Server{
		auth:      authSvc,
		tracker:   tr,
		planner:   pl,
		analytics: engine,
		loc:       engine.Location(),
	}
}

// Router builds the HTTP handler with middleware and all routes.
func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Post("/", s.handleCreateCategory)
				r.Put("/{id}", s.handleUpdateCategory)
				r.Delete("/{id}", s.handleDeleteCategory)
			})

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", s.handleListEntries)
				r.Post("/", s.handleCreateEntry)
				r.Post("/start", s.handleStartTimer)
				r.Post("/stop", s.handleStopTimer)
				r.Get("/active", s.handleActiveTimer)
				r.Delete("/active", s.handleAbandonTimer)
				r.Get("/{id}", s.handleGetEntry)
				r.Put("/{id}", s.handleUpdateEntry)
				r.Delete("/{id}", s.handleDeleteEntry)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.handleListProjects)
				r.Post("/", s.handleCreateProject)
				r.Get("/{id}", s.handleGetProject)
				r.Put("/{id}", s.handleUpdateProject)
				r.Delete("/{id}", s.handleDeleteProject)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Get("/{id}", s.handleGetTask)
				r.Put("/{id}", s.handleUpdateTask)
				r.Delete("/{id}", s.handleDeleteTask)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/heatmap", s.handleHeatmap)
				r.Get("/stats", s.handleStats)
				r.Get("/distribution", s.handleDistribution)
				r.Get("/trends", s.handleTrends)
				r.Get("/rating", s.handleDayRating)
			})
		})
	})

	return r
}
