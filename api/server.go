/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/schedules/*      Schedule management + bulk update
  /api/records/*        Record lookup, completion, overdue/due views
  /api/maintenance/*    Generation and overdue sweep triggers
  /api/analytics/*      Rollups and statistics
  /api/facilities/*     Facility reference data + dashboard
  /api/functions/*      Compliance function reference data
  /api/seed             Demo dataset (dev only)
  /api/health           Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Schedule routes
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Post("/", h.CreateSchedule)
			r.Post("/bulk-update", h.BulkUpdateSchedules)
			r.Get("/{id}", h.GetSchedule)
			r.Put("/{id}", h.UpdateSchedule)
			r.Delete("/{id}", h.DeactivateSchedule)
			r.Get("/{id}/records", h.ListScheduleRecords)
		})

		// Record routes
		r.Route("/records", func(r chi.Router) {
			r.Get("/overdue", h.ListOverdueRecords)
			r.Get("/due", h.ListDueRecords)
			r.Get("/{id}", h.GetRecord)
			r.Post("/{id}/complete", h.CompleteRecord)
		})

		// Maintenance routes
		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/generate", h.RunGeneration)
			r.Post("/sweep", h.RunSweep)
		})

		// Analytics routes
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/schedules", h.GetScheduleAnalytics)
			r.Get("/statistics", h.GetStatistics)
			r.Get("/status", h.GetStatusRollup)
		})

		// Facility routes
		r.Route("/facilities", func(r chi.Router) {
			r.Get("/", h.ListFacilities)
			r.Post("/", h.CreateFacility)
			r.Get("/{id}", h.GetFacility)
			r.Get("/{id}/dashboard", h.GetDashboard)
		})

		// Function routes
		r.Route("/functions", func(r chi.Router) {
			r.Get("/", h.ListFunctions)
			r.Post("/", h.CreateFunction)
			r.Get("/{id}", h.GetFunction)
		})

		// Demo data
		r.Post("/seed", h.Seed)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
