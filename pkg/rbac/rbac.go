// Package rbac gates routes on the caller's role.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/tiffin/pkg/middleware"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

// HasRole allows only callers whose token role is one of roles. Anonymous
// callers get 401, authenticated callers with another role get 403.
// middleware.Identify must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := middleware.UserIDFromCtx(r); !ok {
				response.Unauthorized(w)
				return
			}
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
