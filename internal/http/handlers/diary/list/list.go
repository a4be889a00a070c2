// Package list implements the HTTP handler for paginated diary listings
// with an optional date range filter.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Handler serves GET /diary/api/diaries.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the diary listing contract.
type Service interface {
	List(ctx context.Context, userID int64, startDate, endDate *time.Time, limit, offset int) ([]*models.DiaryEntry, int, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP lists diary entries newest first.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.diary.list"

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

	query := r.URL.Query()

	startDate, err := parseDate(query.Get("start_date"))
	if err != nil {
		log.Error("failed to parse start date", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("start_date must be in format 2006-01-02"))
		return
	}
	endDate, err := parseDate(query.Get("end_date"))
	if err != nil {
		log.Error("failed to parse end date", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("end_date must be in format 2006-01-02"))
		return
	}

	limit := parseIntDefault(query.Get("limit"), defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := parseIntDefault(query.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.service.List(r.Context(), userID, startDate, endDate, limit, offset)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"diaries": entries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	}))
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
