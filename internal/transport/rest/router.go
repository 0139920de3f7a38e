package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/auth-service/internal/auditlog"
	"github.com/frahmantamala/auth-service/internal/auth"
	"github.com/frahmantamala/auth-service/internal/role"
	"github.com/frahmantamala/auth-service/internal/transport/middleware"
	"github.com/frahmantamala/auth-service/internal/transport/swagger"
)

// Permission names gating the management surface. They match the seeded
// permission rows.
const (
	PermEditUsers   = "CanEditUsers"
	PermManageRoles = "CanManageRoles"
	PermViewReports = "CanViewReports"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, roleHandler *role.Handler, auditHandler *auditlog.Handler, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec at root, swagger UI beside it
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public auth surface
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/register", authHandler.Register)
			sr.Get("/roles", roleHandler.ListRoles)
		})

		// Protected management surface
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(middleware.RequirePermission(logger, PermEditUsers))
				ur.Get("/", authHandler.ListUsers)
				ur.Get("/{id}", authHandler.GetUser)
				ur.Put("/{id}", authHandler.UpdateUser)
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.Use(middleware.RequirePermission(logger, PermManageRoles))
				rr.Post("/", roleHandler.CreateRole)
				rr.Delete("/{id}", roleHandler.DeleteRole)
				rr.Get("/{id}/permissions", roleHandler.GetRolePermissions)
				rr.Post("/{id}/permissions", roleHandler.AssignPermissions)
				rr.Delete("/{id}/permissions/{permissionID}", roleHandler.RevokePermission)
			})

			pr.Route("/logs", func(lr chi.Router) {
				lr.Use(middleware.RequirePermission(logger, PermViewReports))
				lr.Post("/", auditHandler.Record)
				lr.Get("/", auditHandler.List)
			})
		})
	})
}
