// Package priorityremove implements the admin handler deleting a model
// priority row.
package priorityremove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/response"
)

// Handler serves DELETE /admin/api/ai-priorities?country=&tier=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the priority deletion contract.
type Service interface {
	RemovePriority(ctx context.Context, country, tier string) error
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP deletes the priority row and its cache entry.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.priorityremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	country := r.URL.Query().Get("country")
	tier := r.URL.Query().Get("tier")
	if country == "" || tier == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("country and tier query parameters are required"))
		return
	}

	if err := h.service.RemovePriority(r.Context(), country, tier); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("priority removed",
		slog.String("country", country),
		slog.String("tier", tier))
	render.JSON(w, r, response.Response{Status: response.StatusOK})
}
