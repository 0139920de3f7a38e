package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/auth-service/internal/auth"
)

// RequirePermission gates a route on a permission claim carried by the
// validated token. It assumes the auth middleware already ran.
func RequirePermission(logger *slog.Logger, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok || claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !claims.HasPermission(permission) {
				logger.Warn("access denied: insufficient permissions",
					"username", claims.Username,
					"required_permission", permission,
					"user_permissions", claims.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
