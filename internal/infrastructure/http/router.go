package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/handlers"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler   *handlers.AuthHandler
	OAuthHandler  *handlers.OAuthHandler
	UsersHandler  *handlers.UsersHandler
	ChatHandler   *handlers.ChatHandler
	HealthHandler *handlers.HealthHandler
	RequireJWT    func(http.Handler) http.Handler
	CORS          func(http.Handler) http.Handler
	Secure        func(http.Handler) http.Handler
	IPRateLimit   func(http.Handler) http.Handler
	Log           zerolog.Logger
	Metrics       bool // expose /metrics
}

// NewRouter mounts the API under /api/v1. Policy middleware wraps each route
// group: User, Admin or All, on top of the shared JWT validator.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/registration", cfg.AuthHandler.Registration)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Get("/refresh-token", cfg.AuthHandler.RefreshToken)
			if cfg.OAuthHandler != nil {
				r.Get("/google-login", cfg.OAuthHandler.GoogleLogin)
				r.Get("/google-response", cfg.OAuthHandler.GoogleResponse)
			}
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Use(middleware.RequirePolicy(middleware.PolicyAll))
				r.Get("/authorize", cfg.AuthHandler.Authorize)
				r.Get("/unauthorize", cfg.AuthHandler.Unauthorize)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePolicy(middleware.PolicyAll))
				r.Patch("/", cfg.UsersHandler.Update)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePolicy(middleware.PolicyUser))
				r.Delete("/me", cfg.UsersHandler.DeleteMe)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePolicy(middleware.PolicyAdmin))
				r.Get("/", cfg.UsersHandler.List)
				r.Delete("/{id}", cfg.UsersHandler.Delete)
			})
		})

		if cfg.ChatHandler != nil {
			r.Route("/chat", func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Use(middleware.RequirePolicy(middleware.PolicyAll))
				r.Get("/users", cfg.ChatHandler.Partners)
				r.Get("/history/{userId}", cfg.ChatHandler.History)
				r.Get("/unread", cfg.ChatHandler.Unread)
				r.Get("/stream", cfg.ChatHandler.Stream)
				r.Post("/messages", cfg.ChatHandler.Send)
				r.Post("/mark-read/{userId}", cfg.ChatHandler.MarkRead)
			})
		}
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
