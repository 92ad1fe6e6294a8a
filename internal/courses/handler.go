package courses

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
	"github.com/tonyadjei/devcamper-api/internal/query"
	"github.com/tonyadjei/devcamper-api/internal/transport"
	"github.com/tonyadjei/devcamper-api/internal/validation"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

// List serves both /courses and /bootcamps/{bootcampId}/courses. The nested
// form returns the bootcamp's courses without pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if bootcampID := strings.TrimSpace(chi.URLParam(r, "bootcampId")); bootcampID != "" {
		courses, err := h.service.ListByBootcamp(ctx, bootcampID)
		if err != nil {
			log.Error("courses list: database error", slog.String("error", err.Error()))
			transport.WriteStoreError(w, err)
			return
		}
		log.Info("courses list: ok", slog.String("bootcamp_id", bootcampID), slog.Int("count", len(courses)))
		transport.WriteList(w, len(courses), nil, courses)
		return
	}

	result, err := h.service.List(ctx, query.Parse(r.URL.Query()))
	if err != nil {
		log.Error("courses list: database error", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("courses list: ok", slog.Int("count", result.Count))
	transport.WriteList(w, result.Count, &result.Pagination, result.Data)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	course, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("courses get: not found", slog.String("course_id", id))
			transport.WriteError(w, http.StatusNotFound, "Resource not found", nil)
			return
		}
		log.Error("courses get: database error", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	transport.WriteData(w, http.StatusOK, course)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	bootcampID := strings.TrimSpace(chi.URLParam(r, "bootcampId"))

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route", nil)
		return
	}

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("courses create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("courses create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	course, err := h.service.Create(ctx, principal, bootcampID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBootcampNotFound):
			log.Warn("courses create: bootcamp not found", slog.String("bootcamp_id", bootcampID))
			transport.WriteError(w, http.StatusNotFound, "Resource not found", nil)
		case errors.Is(err, ErrNotOwner):
			log.Warn("courses create: forbidden", slog.String("bootcamp_id", bootcampID))
			transport.WriteError(w, http.StatusForbidden, "Not authorized to add a course to this bootcamp", nil)
		default:
			log.Error("courses create: failed", slog.String("error", err.Error()))
			transport.WriteStoreError(w, err)
		}
		return
	}

	log.Info("courses create: ok", slog.String("course_id", course.ID))
	transport.WriteData(w, http.StatusCreated, course)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route", nil)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("courses update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("courses update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	course, err := h.service.Update(ctx, principal, id, req)
	if err != nil {
		h.writeOwnershipError(w, log, err, id, "update")
		return
	}

	log.Info("courses update: ok", slog.String("course_id", id))
	transport.WriteData(w, http.StatusOK, course)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, principal, id); err != nil {
		h.writeOwnershipError(w, log, err, id, "delete")
		return
	}

	log.Info("courses delete: ok", slog.String("course_id", id))
	transport.WriteData(w, http.StatusOK, map[string]interface{}{})
}

func (h *Handler) writeOwnershipError(w http.ResponseWriter, log *slog.Logger, err error, id, action string) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn("courses "+action+": not found", slog.String("course_id", id))
		transport.WriteError(w, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, ErrNotOwner):
		log.Warn("courses "+action+": forbidden", slog.String("course_id", id))
		transport.WriteError(w, http.StatusForbidden, "Not authorized to "+action+" this course", nil)
	default:
		log.Error("courses "+action+": failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
