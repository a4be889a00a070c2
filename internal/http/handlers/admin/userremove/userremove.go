// Package userremove implements the admin user deletion handler.
package userremove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
)

// Handler serves DELETE /admin/api/users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the user deletion contract.
type Service interface {
	RemoveUser(ctx context.Context, id int64) error
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP deletes the user and all dependent rows.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	if err := h.service.RemoveUser(r.Context(), id); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("user removed", slog.Int64("user_id", id))
	render.JSON(w, r, response.Response{Status: response.StatusOK})
}
