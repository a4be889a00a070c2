// Package translate implements the HTTP handler for AI-backed text
// translation between the supported languages.
package translate

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
	"github.com/overmind-app/overmind/internal/services/translation"
)

// Handler serves POST /translate/api/translate.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the translation contract.
type Service interface {
	Translate(ctx context.Context, req models.TranslationRequest) (*translation.Result, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP translates the submitted text.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.translation.translate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.TranslationRequest
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

	result, err := h.service.Translate(r.Context(), req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("text translated",
		slog.String("source_lang", req.SourceLang),
		slog.String("target_lang", req.TargetLang),
		slog.String("model", result.Model))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"translated_text": result.TranslatedText,
		"source_lang":     req.SourceLang,
		"target_lang":     req.TargetLang,
		"model":           result.Model,
	}))
}
