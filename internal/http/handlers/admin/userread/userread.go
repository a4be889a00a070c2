// Package userread implements the admin single-user lookup handler.
package userread

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
	"github.com/overmind-app/overmind/internal/models"
)

// Handler serves GET /admin/api/users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the user lookup contract.
type Service interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP returns the user by id.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userread"

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

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
