package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tabletopkit/almanac/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /health
//	GET  /api/v1/calendars                      list calendars
//	POST /api/v1/calendars                      create calendar        (auth)
//	GET  /api/v1/calendars/{id}                 get calendar (ID or name)
//	PUT  /api/v1/calendars/{id}                 replace calendar       (auth)
//	DELETE /api/v1/calendars/{id}               delete calendar        (auth)
//	GET  /api/v1/calendars/{id}/date            world time -> date
//	GET  /api/v1/calendars/{id}/worldtime       date -> world time
//	POST /api/v1/calendars/{id}/add             date arithmetic
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware())

	auth := AuthMiddleware(cfg, logger)

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1/calendars", func(r chi.Router) {
		r.Get("/", handlers.ListCalendars)
		r.With(auth).Post("/", handlers.CreateCalendar)

		r.Route("/{calendarID}", func(r chi.Router) {
			r.Get("/", handlers.GetCalendar)
			r.With(auth).Put("/", handlers.UpdateCalendar)
			r.With(auth).Delete("/", handlers.DeleteCalendar)

			r.Get("/date", handlers.GetDate)
			r.Get("/worldtime", handlers.GetWorldTime)
			r.Post("/add", handlers.AddToDate)
		})
	})

	return r
}
