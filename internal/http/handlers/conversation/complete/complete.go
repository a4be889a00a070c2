// Package complete implements the HTTP handler that ends a conversation.
package complete

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
)

// Handler serves POST /diary/api/conversations/{id}/complete.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the conversation completion contract.
type Service interface {
	Complete(ctx context.Context, userID, conversationID int64) (*models.Conversation, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP marks a conversation as completed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.conversation.complete"

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

	conversationID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	conv, err := h.service.Complete(r.Context(), userID, conversationID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("conversation completed", slog.Int64("conversation_id", conversationID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"conversation": conv,
	}))
}
