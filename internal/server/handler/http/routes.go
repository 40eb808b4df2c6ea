// Package http provides HTTP routing and middleware configuration
// for the sync service.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keydrop/keydrop-core/internal/authtoken"
	"github.com/keydrop/keydrop-core/internal/middleware"
)

// RouterConfig bundles the dependencies needed to build the router.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	SyncHandler    *SyncHandler
	CommandHandler *CommandHandler
	Signer         *authtoken.Signer
	Logger         *zap.Logger
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter constructs the HTTP handler that serves the sync API. It
// applies JSON content-type enforcement, request logging, and rate
// limiting to every route, and bearer-token authentication to
// everything except registration, login, and refresh.
//
// Routes:
//
//	POST /auth/register               → public
//	POST /auth/login                  → public
//	POST /auth/refresh                → public
//	GET  /sync/pull                   → protected
//	POST /sync/push                   → protected
//	GET  /devices/commands            → protected (device polls its own queue)
//	POST /devices/commands/{id}/ack   → protected
//	POST /devices/{deviceID}/commands → protected (issue a lock/wipe)
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(cfg.Logger))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.Signer))

		r.Route("/sync", func(r chi.Router) {
			r.Get("/pull", cfg.SyncHandler.Pull)
			r.Post("/push", cfg.SyncHandler.Push)
		})

		r.Route("/devices", func(r chi.Router) {
			r.Get("/commands", cfg.CommandHandler.ListPending)
			r.Post("/commands/{id}/ack", cfg.CommandHandler.Ack)
			r.Post("/{deviceID}/commands", cfg.CommandHandler.Issue)
		})
	})

	return r
}
