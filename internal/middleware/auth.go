package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tonyadjei/devcamper-api/internal/auth"
	"github.com/tonyadjei/devcamper-api/internal/transport"
)

// Principal is the authenticated identity a protected handler sees.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// PrincipalLookup resolves a token subject to a live user record.
type PrincipalLookup func(ctx context.Context, id string) (Principal, error)

type principalKey struct{}

const notAuthorizedMsg = "Not authorized to access this route"

// Protect authenticates the request from the Authorization header or the
// token cookie and stores the resolved principal in the request context.
func Protect(manager *auth.Manager, lookup PrincipalLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				transport.WriteError(w, http.StatusUnauthorized, notAuthorizedMsg, nil)
				return
			}

			claims, err := manager.Parse(token)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, notAuthorizedMsg, nil)
				return
			}

			principal, err := lookup(r.Context(), claims.Subject)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, notAuthorizedMsg, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// Authorize gates a route by role. It must run after Protect.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				transport.WriteError(w, http.StatusUnauthorized, notAuthorizedMsg, nil)
				return
			}
			if !allowed[principal.Role] {
				msg := fmt.Sprintf("User role '%s' is not authorized to access this route", principal.Role)
				transport.WriteError(w, http.StatusForbidden, msg, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal stores the principal on the context, as Protect does.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	v := ctx.Value(principalKey{})
	if v == nil {
		return Principal{}, false
	}
	principal, ok := v.(Principal)
	return principal, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
