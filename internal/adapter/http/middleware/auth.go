package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/auth"
	"github.com/iho/bankist/internal/usecase"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ClaimsContextKey is the context key for the verified token claims
	ClaimsContextKey ContextKey = "claims"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// SessionHolder reports whether a login session is still the active one.
type SessionHolder interface {
	Holds(sessionID, username string) bool
}

// SessionGuard rejects requests whose bearer token does not belong to the
// active session. Tokens outlive their session after logout, a forced
// logout, account closure or a newer login, and are refused from then on.
// The request context is bound to the token's session, so a login that
// lands after this check still cannot be acted on with the old token.
func SessionGuard(verifier TokenVerifier, sessions SessionHolder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, domain.ErrorCode(domain.ErrInvalidToken), "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, domain.ErrorCode(domain.ErrInvalidToken), "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, domain.ErrorCode(err), err.Error())
				return
			}

			if !sessions.Holds(claims.SessionID, claims.Username) {
				writeError(w, http.StatusUnauthorized, domain.ErrorCode(domain.ErrNoActiveSession), "session has ended")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = usecase.WithSessionID(ctx, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the verified claims from context.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}
