/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Metrics:    Latency per route pattern

ROUTE GROUPS:
  /api/employees/*      Employees, their entries, weeks and requests
  /api/shifts/*         Shift rosters
  /api/timeoff/*        Request approval, reports, calendar
  /api/compute/*        Stateless previews
  /api/export/*         Spreadsheet downloads
  /api/scenarios/*      Demo data
  /metrics              Prometheus

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. An empty
// origins list allows any origin.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	}))
	r.Use(h.Metrics.Instrument)

	r.Handle("/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Put("/{id}/entries/{date}", h.SubmitEntry)
			r.Get("/{id}/weeks/{weekStart}", h.GetWeek)
			r.Post("/{id}/timeoff", h.CreateTimeOff)
			r.Get("/{id}/timeoff", h.ListEmployeeTimeOff)
		})

		// Roster routes
		r.Get("/shifts/{shift}/weeks/{weekStart}", h.GetShiftWeek)

		// Time-off routes
		r.Route("/timeoff", func(r chi.Router) {
			r.Get("/requests", h.ListRequests)
			r.Post("/requests/{id}/approve", h.ApproveRequest)
			r.Post("/requests/{id}/reject", h.RejectRequest)
			r.Get("/report", h.TimeOffReport)
			r.Get("/calendar", h.TimeOffCalendar)
		})

		r.Post("/compute/day", h.ComputeDay)

		// Export routes
		r.Route("/export", func(r chi.Router) {
			r.Get("/weeks/{weekStart}", h.ExportWeek)
			r.Get("/timeoff", h.ExportTimeOff)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
