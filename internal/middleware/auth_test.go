package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tonyadjei/devcamper-api/internal/auth"
)

func testManager() *auth.Manager {
	return &auth.Manager{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "devcamper-api"}
}

func okLookup(p Principal) PrincipalLookup {
	return func(ctx context.Context, id string) (Principal, error) {
		if id != p.ID {
			return Principal{}, errors.New("user not found")
		}
		return p, nil
	}
}

func protectedEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Fatalf("principal missing from context")
		}
		w.Write([]byte(principal.ID))
	})
}

func TestProtectWithBearerHeader(t *testing.T) {
	m := testManager()
	token, err := m.NewToken("user-1", "user")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	handler := Protect(m, okLookup(Principal{ID: "user-1", Role: "user"}))(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "user-1" {
		t.Fatalf("expected resolved user id, got %s", rec.Body.String())
	}
}

func TestProtectWithTokenCookie(t *testing.T) {
	m := testManager()
	token, err := m.NewToken("user-2", "user")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	handler := Protect(m, okLookup(Principal{ID: "user-2", Role: "user"}))(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectRejectsMissingToken(t *testing.T) {
	m := testManager()
	handler := Protect(m, okLookup(Principal{ID: "x"}))(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not authorized to access this route") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestProtectRejectsUnknownUser(t *testing.T) {
	m := testManager()
	token, err := m.NewToken("ghost", "user")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	handler := Protect(m, okLookup(Principal{ID: "someone-else"}))(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthorizeRejectsRole(t *testing.T) {
	handler := Authorize("publisher", "admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bootcamps", nil)
	ctx := context.WithValue(req.Context(), principalKey{}, Principal{ID: "u", Role: "user"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User role 'user' is not authorized") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthorizeAllowsRole(t *testing.T) {
	handler := Authorize("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	ctx := context.WithValue(req.Context(), principalKey{}, Principal{ID: "a", Role: "admin"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
