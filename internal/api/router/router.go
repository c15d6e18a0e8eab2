package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/advisory"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/api/respond"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/booking"
	httpmiddleware "github.com/nishanthgowda94486-cpu/sensidoc.com/internal/http/middleware"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/internal/identity"
	"github.com/nishanthgowda94486-cpu/sensidoc.com/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger          *logging.Logger
	BookingHandler  *booking.Handler
	AdvisoryHandler *advisory.Handler
	MetricsHandler  http.Handler

	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSec > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	}

	// Public endpoints.
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Everything under /api requires a valid bearer token.
	r.Route("/api", func(api chi.Router) {
		api.Use(identity.Middleware(cfg.JWTSecret))

		if cfg.BookingHandler != nil {
			api.Post("/appointments", cfg.BookingHandler.Book)
			api.Get("/appointments/{appointmentID}", cfg.BookingHandler.Get)
			api.Put("/appointments/{appointmentID}/status", cfg.BookingHandler.Transition)
		}
		if cfg.AdvisoryHandler != nil {
			api.Route("/ai", func(ai chi.Router) {
				ai.Post("/diagnose", cfg.AdvisoryHandler.Diagnose)
				ai.Post("/drug-analyze", cfg.AdvisoryHandler.AnalyzeDrug)
				ai.Get("/history", cfg.AdvisoryHandler.History)
				ai.Get("/usage", cfg.AdvisoryHandler.Usage)
			})
		}
	})

	return r
}
