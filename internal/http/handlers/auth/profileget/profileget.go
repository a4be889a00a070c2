// Package profileget implements the HTTP handler returning the
// authenticated user's profile.
package profileget

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/models"
)

// Handler serves GET /auth/api/profile.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the profile read contract.
type Service interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP returns the profile of the authenticated user.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profileget"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("missing user id in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"profile": profile,
	}))
}
