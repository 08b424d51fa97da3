package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/omerson-cruz/vue-share-backend/apperror"
)

// contextKey is a private type for context keys so no other package can
// collide with ours.
type contextKey string

const identityContextKey contextKey = "auth_identity"

// Middleware verifies the bearer token on every request and stores the
// resulting Identity in the request context. Requests without a valid token
// are rejected before reaching the handler.
func Middleware(svc *AuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			identity, err := svc.VerifyIdentity(parts[1])
			if err != nil {
				WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the verified identity the middleware stored.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}
