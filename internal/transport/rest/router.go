package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/aura-baza/aura-hr/api"
	"github.com/aura-baza/aura-hr/internal/auth"
	"github.com/aura-baza/aura-hr/internal/role"
	"github.com/aura-baza/aura-hr/internal/transport/middleware"
	"github.com/aura-baza/aura-hr/internal/transport/swagger"
	"github.com/aura-baza/aura-hr/internal/user"
)

// Routes is everything RegisterAllRoutes mounts. Nil handlers are skipped.
type Routes struct {
	Auth   *auth.Handler
	Users  *user.Handler
	Roles  *role.Handler
	Health *HealthHandler

	// Metrics is served at MetricsPath when set; HTTPObserver records
	// per-route samples.
	Metrics      http.Handler
	MetricsPath  string
	HTTPObserver middleware.HTTPObserver

	AllowedOrigins string
}

func RegisterAllRoutes(router *chi.Mux, routes Routes, logger *slog.Logger) {
	if routes.Health == nil {
		routes.Health = NewHealthHandler(nil)
	}

	// Apply global middleware
	router.Use(middleware.CORS(routes.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if routes.HTTPObserver != nil {
		router.Use(middleware.Metrics(routes.HTTPObserver))
	}

	if routes.Metrics != nil {
		path := routes.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, routes.Metrics)
	}

	// OpenAPI document and Swagger UI live outside the API prefix
	router.Get(swagger.DocumentPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI servers
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", routes.Health.HealthCheckHandler)
		r.Get("/ping", routes.Health.PingHandler)

		if routes.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", routes.Auth.Login)
			sr.Post("/refresh", routes.Auth.RefreshToken)
			sr.Post("/logout", routes.Auth.Logout)
			sr.With(routes.Auth.AuthMiddleware).Get("/me", routes.Auth.Me)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(routes.Auth.AuthMiddleware)

			if routes.Users != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", routes.Users.ListUsers)             // GET /users
					ur.Post("/", routes.Users.CreateUser)           // POST /users
					ur.Patch("/bulk", routes.Users.BulkUpdateUsers) // PATCH /users/bulk
					ur.Get("/{id}", routes.Users.GetUser)           // GET /users/:id
					ur.Put("/{id}", routes.Users.UpdateUser)        // PUT /users/:id
					ur.Delete("/{id}", routes.Users.DeleteUser)     // DELETE /users/:id
				})
				pr.Get("/meta", routes.Users.GetMeta)
			}

			if routes.Roles != nil {
				pr.Get("/roles", routes.Roles.ListRoles)
			}
		})
	})
}
