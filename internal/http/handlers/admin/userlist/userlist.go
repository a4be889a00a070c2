// Package userlist implements the admin user listing handler with role and
// status filters.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/models"
)

const defaultLimit = 50

// Handler serves GET /admin/api/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the user listing contract.
type Service interface {
	ListUsers(ctx context.Context, roleFilter, statusFilter string, limit, offset int) ([]*models.User, int, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP lists users for the admin console.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(query.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, total, err := h.service.ListUsers(r.Context(), query.Get("role"), query.Get("status"), limit, offset)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}))
}
