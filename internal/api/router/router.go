package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wattleads/funnel-api/internal/gateway"
	httpmiddleware "github.com/wattleads/funnel-api/internal/http/middleware"
	"github.com/wattleads/funnel-api/internal/leads"
	"github.com/wattleads/funnel-api/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	GatewayHandler     *gateway.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Submission rate limiting; zero disables it.
	SubmitRatePerSec float64
	SubmitBurst      int
}

// New creates a Chi router with all routes configured.
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

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.LeadsHandler != nil {
			public.Route("/leads", func(r chi.Router) {
				if cfg.SubmitRatePerSec > 0 {
					r.With(httpmiddleware.RateLimit(cfg.SubmitRatePerSec, cfg.SubmitBurst)).Post("/web", cfg.LeadsHandler.CreateWebLead)
				} else {
					r.Post("/web", cfg.LeadsHandler.CreateWebLead)
				}
				r.Get("/score", cfg.LeadsHandler.ScoreLead)
			})
		}
		// The gateway handles OPTIONS itself, so register every method.
		if cfg.GatewayHandler != nil {
			public.HandleFunc("/api/ghl/*", cfg.GatewayHandler.Proxy)
		}
	})

	// Admin endpoints behind HMAC JWT auth
	if cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads", cfg.LeadsHandler.ListRecent)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
