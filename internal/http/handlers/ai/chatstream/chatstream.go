// Package chatstream implements the streaming AI gateway endpoint. Chunks
// are relayed to the client as server-sent events, terminated by a [DONE]
// marker.
package chatstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
	"github.com/overmind-app/overmind/internal/services/modelselector"
)

// Handler serves POST /ai/api/req/stream.
type Handler struct {
	log      *slog.Logger
	gateway  Gateway
	validate *validator.Validate
}

// Gateway is the AI streaming contract.
type Gateway interface {
	Stream(ctx context.Context, provider string, req aiclient.Request, emit func(chunk string) error) error
}

// New creates a Handler.
func New(log *slog.Logger, gateway Gateway) *Handler {
	return &Handler{
		log:      log,
		gateway:  gateway,
		validate: validator.New(),
	}
}

// ServeHTTP relays provider output as SSE data events.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.chatstream"

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

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support flushing")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("streaming unsupported"))
		return
	}

	model := req.Model
	if model == "" {
		model = modelselector.DefaultModel(req.Provider)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	err := h.gateway.Stream(r.Context(), req.Provider, aiclient.Request{
		Model:       model,
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}, func(chunk string) error {
		if err := writeEvent(w, chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are already out, so the failure rides the stream itself.
		log.Error("stream failed", sl.Err(err))
		fmt.Fprintf(w, "data: [ERROR] %s\n\n", streamErrorMessage(err))
		flusher.Flush()
		return
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
	log.Info("stream finished",
		slog.String("provider", req.Provider),
		slog.String("model", model))
}

// writeEvent frames one chunk as a single SSE event. A chunk containing
// newlines becomes one data: line per line, so an embedded newline cannot
// truncate the event.
func writeEvent(w io.Writer, chunk string) error {
	for _, line := range strings.Split(chunk, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func streamErrorMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "upstream failure"
}
