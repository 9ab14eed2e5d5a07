package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/tiffin/pkg/auth"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// WithIdentity stores id in ctx. Used by Identify and by tests.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller stored by Identify.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

func UserIDFromCtx(r *http.Request) (string, bool) {
	id, ok := IdentityFromContext(r.Context())
	return id.UserID, ok
}

func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := IdentityFromContext(r.Context())
	return id.Role, ok && id.Role != ""
}

// Identify attaches the bearer token's identity to the request when the
// token is valid. It never rejects: handlers decide what an anonymous
// caller gets. Websocket clients may pass the token as ?access_token=.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			logger.WithCtx(r.Context()).Debug("ignoring invalid bearer token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate rejects anonymous callers with 401.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromCtx(r); !ok {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}
