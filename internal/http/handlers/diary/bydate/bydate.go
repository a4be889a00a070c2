// Package bydate implements the HTTP handler looking a diary entry up by
// its calendar date.
package bydate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
)

// Handler serves GET /diary/api/diaries/by-date?entry_date=YYYY-MM-DD.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the diary-by-date lookup contract.
type Service interface {
	GetByDate(ctx context.Context, userID int64, entryDate time.Time) (*models.DiaryEntry, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP returns the diary entry for a date.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.diary.bydate"

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

	entryDate, err := time.Parse("2006-01-02", r.URL.Query().Get("entry_date"))
	if err != nil {
		log.Error("failed to parse entry date", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("entry_date must be in format 2006-01-02"))
		return
	}

	entry, err := h.service.GetByDate(r.Context(), userID, entryDate)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"diary": entry,
	}))
}
