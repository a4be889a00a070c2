// Package chat implements the direct AI gateway endpoint. Callers pick the
// provider; the model falls back to the provider's basic tier default.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
	"github.com/overmind-app/overmind/internal/services/modelselector"
)

// Handler serves POST /ai/api/req.
type Handler struct {
	log      *slog.Logger
	gateway  Gateway
	validate *validator.Validate
}

// Gateway is the AI generation contract.
type Gateway interface {
	Generate(ctx context.Context, provider string, req aiclient.Request) (*aiclient.Response, error)
}

// New creates a Handler.
func New(log *slog.Logger, gateway Gateway) *Handler {
	return &Handler{
		log:      log,
		gateway:  gateway,
		validate: validator.New(),
	}
}

// ServeHTTP proxies a single generation request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.chat"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ChatRequest
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

	model := req.Model
	if model == "" {
		model = modelselector.DefaultModel(req.Provider)
	}

	resp, err := h.gateway.Generate(r.Context(), req.Provider, aiclient.Request{
		Model:       model,
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("generation served",
		slog.String("provider", resp.Provider),
		slog.String("model", resp.Model))
	render.JSON(w, r, resp)
}
