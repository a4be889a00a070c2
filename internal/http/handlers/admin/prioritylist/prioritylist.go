// Package prioritylist implements the admin handler listing model priority
// rows.
package prioritylist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/models"
)

// Handler serves GET /admin/api/ai-priorities.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the priority listing contract.
type Service interface {
	ListPriorities(ctx context.Context) ([]*models.ModelPriority, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP lists every (country, tier) priority row.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.prioritylist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	priorities, err := h.service.ListPriorities(r.Context())
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"priorities": priorities,
	}))
}
