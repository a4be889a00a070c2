// Package priorityupdate implements the admin handler creating or replacing
// a model priority row. A successful write invalidates the selector cache
// for that (country, tier).
package priorityupdate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
)

// Handler serves PUT /admin/api/ai-priorities.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the priority upsert contract.
type Service interface {
	UpsertPriority(ctx context.Context, req models.UpsertPriorityRequest) (*models.ModelPriority, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP upserts the priority row.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.priorityupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.UpsertPriorityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validateErrs validator.ValidationErrors
		errors.As(err, &validateErrs)
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErrs))
		return
	}

	priority, err := h.service.UpsertPriority(r.Context(), req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("priority upserted",
		slog.String("country", priority.Country),
		slog.String("tier", priority.Tier))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"priority": priority,
	}))
}
