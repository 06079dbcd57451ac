package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nrichard27/account-api/internal/domain"
	"github.com/nrichard27/account-api/internal/health"
	"github.com/nrichard27/account-api/internal/middleware"
	"github.com/nrichard27/account-api/internal/token"
)

// serviceName labels metrics emitted by the HTTP middleware.
const serviceName = "account-api"

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Addresses *AddressHandler
	Guard     *Guard
	Health    *health.Handler
	Logger    *slog.Logger
	CORS      CORSConfig
}

// NewRouter builds the HTTP route tree. Static segments such as "@me" take
// precedence over path parameters, so the self-service routes never shadow
// the admin ones.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(CORS(cfg.CORS))
	r.Use(ContentTypeJSON)

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	requireAccess := cfg.Guard.RequireToken(token.KindAccess)
	requireRefresh := cfg.Guard.RequireToken(token.KindRefresh)
	requireAdmin := cfg.Guard.RequireRole(domain.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)

			r.With(requireRefresh).Post("/refresh", cfg.Auth.Refresh)

			// Logout skips the ledger presence check so logging out an
			// already-revoked token stays idempotent.
			r.With(cfg.Guard.RequireTokenSignature(token.KindRefresh)).Post("/logout", cfg.Auth.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAccess)

			r.Route("/@me", func(r chi.Router) {
				r.Get("/", cfg.Users.GetSelf)
				r.Patch("/", cfg.Users.UpdateSelf)
				r.Delete("/", cfg.Users.DeleteSelf)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", cfg.Users.Create)
				r.Get("/", cfg.Users.List)
				r.Get("/{user_id}", cfg.Users.Get)
				r.Patch("/{user_id}", cfg.Users.Update)
				r.Delete("/{user_id}", cfg.Users.Delete)
			})
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Use(requireAccess)

			r.Route("/@me", func(r chi.Router) {
				r.Post("/", cfg.Addresses.CreateSelf)
				r.Get("/", cfg.Addresses.ListSelf)
				r.Get("/{address_id}", cfg.Addresses.GetSelf)
				r.Patch("/{address_id}", cfg.Addresses.UpdateSelf)
				r.Delete("/{address_id}", cfg.Addresses.DeleteSelf)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/{user_id}", cfg.Addresses.Create)
				r.Get("/{user_id}", cfg.Addresses.List)
				r.Get("/{user_id}/{address_id}", cfg.Addresses.Get)
				r.Patch("/{user_id}/{address_id}", cfg.Addresses.Update)
				r.Delete("/{user_id}/{address_id}", cfg.Addresses.Delete)
			})
		})
	})

	return r
}
