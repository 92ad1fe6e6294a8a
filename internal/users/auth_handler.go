package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tonyadjei/devcamper-api/internal/httpx"
	"github.com/tonyadjei/devcamper-api/internal/middleware"
	"github.com/tonyadjei/devcamper-api/internal/transport"
	"github.com/tonyadjei/devcamper-api/internal/validation"
)

type AuthHandler struct {
	service      *AuthService
	val          *validation.Validator
	log          *slog.Logger
	publicURL    string
	cookieTTL    time.Duration
	cookieSecure bool
}

func NewAuthHandler(service *AuthService, val *validation.Validator, log *slog.Logger, publicURL string, cookieTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		val:          val,
		log:          log,
		publicURL:    strings.TrimRight(publicURL, "/"),
		cookieTTL:    cookieTTL,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req RegisterRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("register: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("register: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, token, err := h.service.Register(ctx, req)
	if err != nil {
		log.Error("register: failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("register: ok", slog.String("user_id", user.ID))
	h.sendToken(w, http.StatusCreated, token)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, token, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCredentials):
			log.Warn("login: missing credentials")
			transport.WriteError(w, http.StatusBadRequest, "Please provide an email and password", nil)
		case errors.Is(err, ErrInvalidCredentials):
			log.Warn("login: invalid credentials")
			transport.WriteError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		default:
			log.Error("login: failed", slog.String("error", err.Error()))
			transport.WriteStoreError(w, err)
		}
		return
	}

	log.Info("login: ok", slog.String("user_id", user.ID))
	h.sendToken(w, http.StatusOK, token)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
	})
	log.Info("logout: ok")
	transport.WriteData(w, http.StatusOK, map[string]interface{}{})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	principal, _ := middleware.PrincipalFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.service.Me(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "Resource not found", nil)
			return
		}
		log.Error("me: failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	transport.WriteData(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	principal, _ := middleware.PrincipalFromContext(r.Context())

	var req UpdateDetailsRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("update details: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("update details: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, err := h.service.UpdateDetails(ctx, principal.ID, req)
	if err != nil {
		log.Error("update details: failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("update details: ok", slog.String("user_id", user.ID))
	transport.WriteData(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	principal, _ := middleware.PrincipalFromContext(r.Context())

	var req UpdatePasswordRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("update password: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("update password: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, token, err := h.service.UpdatePassword(ctx, principal.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrWrongPassword) {
			log.Warn("update password: wrong current password")
			transport.WriteError(w, http.StatusUnauthorized, "Password is incorrect", nil)
			return
		}
		log.Error("update password: failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("update password: ok", slog.String("user_id", user.ID))
	h.sendToken(w, http.StatusOK, token)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ForgotPasswordRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("forgot password: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("forgot password: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.ForgotPassword(ctx, req.Email, h.publicURL); err != nil {
		switch {
		case errors.Is(err, ErrEmailNotFound):
			log.Warn("forgot password: unknown email")
			transport.WriteError(w, http.StatusNotFound, "There is no user with that email", nil)
		case errors.Is(err, ErrEmailSendFailed):
			log.Error("forgot password: email send failed")
			transport.WriteError(w, http.StatusInternalServerError, "Email could not be sent", nil)
		default:
			log.Error("forgot password: failed", slog.String("error", err.Error()))
			transport.WriteStoreError(w, err)
		}
		return
	}

	log.Info("forgot password: reset email sent")
	transport.WriteData(w, http.StatusOK, "Email sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	plainToken := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("reset password: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("reset password: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, token, err := h.service.ResetPassword(ctx, plainToken, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			log.Warn("reset password: invalid token")
			transport.WriteError(w, http.StatusBadRequest, "Invalid token", nil)
			return
		}
		log.Error("reset password: failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("reset password: ok", slog.String("user_id", user.ID))
	h.sendToken(w, http.StatusOK, token)
}

// sendToken delivers the bearer token both in the JSON body and as an
// HTTP-only cookie.
func (h *AuthHandler) sendToken(w http.ResponseWriter, status int, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookieTTL.Seconds()),
	})
	transport.WriteToken(w, status, token)
}

func (h *AuthHandler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
