// Package languages implements the HTTP handler listing supported
// translation languages.
package languages

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/services/prompts"
)

// Handler serves GET /translate/api/languages.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the language listing contract.
type Service interface {
	Languages() []prompts.LanguageInfo
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP lists the supported languages.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.translation.languages"

	h.log.Debug("listing languages",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"languages": h.service.Languages(),
	}))
}
