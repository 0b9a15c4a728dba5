package middleware

import (
	"net/http"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

// RequireRole admits only identities holding role. Roles are a flat set,
// there is no hierarchy. Auth must run first.
func RequireRole(role domain.Role, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			roles, _ := RolesFromContext(r.Context())
			if !domain.ParseRoles(roles).Has(role) {
				writeErr(w, r, domain.ErrInsufficientRole(string(role)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
