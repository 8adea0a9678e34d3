package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// PermissionChecker resolves whether a user holds a permission.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

// RequirePermission allows the request through only when the authenticated
// user's role grants permission. It must run after Auth.
func RequirePermission(checker PermissionChecker, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			allowed, err := checker.HasPermission(r.Context(), claims.UserID, permission)
			if err != nil {
				slog.Error("permission lookup failed", "user_id", claims.UserID, "permission", permission, "err", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !allowed {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
