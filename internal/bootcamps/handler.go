package bootcamps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tonyadjei/devcamper-api/internal/httpx"
	"github.com/tonyadjei/devcamper-api/internal/middleware"
	"github.com/tonyadjei/devcamper-api/internal/query"
	"github.com/tonyadjei/devcamper-api/internal/transport"
	"github.com/tonyadjei/devcamper-api/internal/uploads"
	"github.com/tonyadjei/devcamper-api/internal/validation"
)

type Handler struct {
	service *Service
	photos  *uploads.Store
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, photos *uploads.Store, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		photos:  photos,
		val:     val,
		log:     log,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	result, err := h.service.List(ctx, query.Parse(r.URL.Query()))
	if err != nil {
		log.Error("bootcamps list: database error", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("bootcamps list: ok", slog.Int("count", result.Count))
	transport.WriteList(w, result.Count, &result.Pagination, result.Data)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bootcamp, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("bootcamps get: not found", slog.String("bootcamp_id", id))
			transport.WriteError(w, http.StatusNotFound, "Resource not found", nil)
			return
		}
		log.Error("bootcamps get: database error", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	transport.WriteData(w, http.StatusOK, bootcamp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route", nil)
		return
	}

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("bootcamps create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("bootcamps create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bootcamp, err := h.service.Create(ctx, principal, req)
	if err != nil {
		if errors.Is(err, ErrAlreadyPublished) {
			log.Warn("bootcamps create: duplicate publisher", slog.String("user_id", principal.ID))
			msg := fmt.Sprintf("The user with ID %s has already published a bootcamp", principal.ID)
			transport.WriteError(w, http.StatusBadRequest, msg, nil)
			return
		}
		log.Error("bootcamps create: failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("bootcamps create: ok", slog.String("bootcamp_id", bootcamp.ID))
	transport.WriteData(w, http.StatusCreated, bootcamp)
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
		log.Warn("bootcamps update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("bootcamps update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bootcamp, err := h.service.Update(ctx, principal, id, req)
	if err != nil {
		h.writeOwnershipError(w, log, err, id, "update")
		return
	}

	log.Info("bootcamps update: ok", slog.String("bootcamp_id", id))
	transport.WriteData(w, http.StatusOK, bootcamp)
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

	log.Info("bootcamps delete: ok", slog.String("bootcamp_id", id))
	transport.WriteData(w, http.StatusOK, map[string]interface{}{})
}

// Radius serves GET /bootcamps/radius/{zipcode}/{distance}, distance in miles.
func (h *Handler) Radius(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	zipcode := strings.TrimSpace(chi.URLParam(r, "zipcode"))
	if err := h.val.Var(zipcode, "required,zipcode"); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid zipcode", nil)
		return
	}

	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil || distance <= 0 {
		transport.WriteError(w, http.StatusBadRequest, "invalid distance", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	found, err := h.service.WithinRadius(ctx, zipcode, distance)
	if err != nil {
		log.Error("bootcamps radius: failed", slog.String("zipcode", zipcode), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server Error", nil)
		return
	}

	log.Info("bootcamps radius: ok", slog.String("zipcode", zipcode), slog.Int("count", len(found)))
	transport.WriteList(w, len(found), nil, found)
}

// Photo serves PUT /bootcamps/{id}/photo with a multipart "file" part.
func (h *Handler) Photo(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if _, err := h.service.OwnedBootcamp(ctx, principal, id); err != nil {
		h.writeOwnershipError(w, log, err, id, "update")
		return
	}

	filename, err := h.photos.SavePhoto(r, id)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrMissingFile):
			transport.WriteError(w, http.StatusBadRequest, "Please upload a file", nil)
		case errors.Is(err, uploads.ErrNotImage):
			transport.WriteError(w, http.StatusBadRequest, "Please upload an image file", nil)
		case errors.Is(err, uploads.ErrTooLarge):
			msg := fmt.Sprintf("Please upload an image less than %d bytes", h.photos.MaxBytes)
			transport.WriteError(w, http.StatusBadRequest, msg, nil)
		default:
			log.Error("bootcamps photo: save failed", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Problem with file upload", nil)
		}
		return
	}

	if _, err := h.service.SetPhoto(ctx, id, filename); err != nil {
		log.Error("bootcamps photo: update failed", slog.String("error", err.Error()))
		transport.WriteStoreError(w, err)
		return
	}

	log.Info("bootcamps photo: ok", slog.String("bootcamp_id", id), slog.String("photo", filename))
	transport.WriteData(w, http.StatusOK, filename)
}

func (h *Handler) writeOwnershipError(w http.ResponseWriter, log *slog.Logger, err error, id, action string) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn("bootcamps "+action+": not found", slog.String("bootcamp_id", id))
		transport.WriteError(w, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, ErrNotOwner):
		log.Warn("bootcamps "+action+": forbidden", slog.String("bootcamp_id", id))
		transport.WriteError(w, http.StatusForbidden, "Not authorized to "+action+" this bootcamp", nil)
	default:
		log.Error("bootcamps "+action+": failed", slog.String("error", err.Error()))
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
