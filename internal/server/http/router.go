package http

import (
	"net/http"

	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries what NewRouter wires together.
type RouterConfig struct {
	Users          userService
	Gate           authenticator
	DB             pinger
	Metrics        *metrics.Metrics
	Logger         logging.Logger
	AllowedOrigins []string
	Version        string
}

// NewRouter builds the REST API. Middleware order is
// RequestID, Logger, Metrics, CORS, Recoverer; the users group additionally
// requires an access token.
func NewRouter(cfg RouterConfig) http.Handler {
	h := NewHandler(cfg.Users, cfg.DB, cfg.Version, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDHeader)
	r.Use(requestLogger(cfg.Logger))
	r.Use(metricsMiddleware(cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(Authenticator(cfg.Gate, cfg.Logger))

			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/me", h.Me)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Patch("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})

	return r
}
