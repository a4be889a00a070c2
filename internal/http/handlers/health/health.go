// Package health implements the liveness endpoint.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/response"
)

// Handler serves GET /health.
type Handler struct {
	log *slog.Logger
}

// New creates a Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
