package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/outboundhq/salesops-platform/internal/http/handlers"
	httpmiddleware "github.com/outboundhq/salesops-platform/internal/http/middleware"
	"github.com/outboundhq/salesops-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Dashboards         *handlers.DashboardHandler
	Meetings           *handlers.MeetingsHandler
	AuthSecret         string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}

		// Manager-only rollup.
		api.Group(func(mgr chi.Router) {
			mgr.Use(httpmiddleware.RequireRole(cfg.AuthSecret, "manager"))
			mgr.Get("/manager/dashboard", cfg.Dashboards.ManagerDashboard)
		})

		// SDR views, also visible to managers.
		api.Group(func(sdr chi.Router) {
			sdr.Use(httpmiddleware.RequireRole(cfg.AuthSecret, "manager", "sdr"))
			sdr.Get("/sdrs/{sdrID}/dashboard", cfg.Dashboards.SDRDashboard)
			sdr.Get("/sdrs/{sdrID}/meetings", cfg.Meetings.List)
			sdr.Post("/sdrs/{sdrID}/meetings", cfg.Meetings.Create)
			sdr.Get("/sdrs/{sdrID}/meetings/export", cfg.Meetings.Export)
			sdr.Post("/sdrs/{sdrID}/meetings/import", cfg.Meetings.Import)
			sdr.Patch("/meetings/{meetingID}", cfg.Meetings.Update)
		})

		// Client portal view.
		api.Group(func(client chi.Router) {
			client.Use(httpmiddleware.RequireRole(cfg.AuthSecret, "manager", "client"))
			client.Get("/clients/{clientID}/dashboard", cfg.Dashboards.ClientDashboard)
		})
	})

	return r
}
