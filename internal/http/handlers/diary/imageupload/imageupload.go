// Package imageupload implements the HTTP handler storing diary photos on
// local disk and returning a public URL for use in messages.
package imageupload

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/overmind-app/overmind/internal/config"
	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/sl"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Handler serves POST /diary/api/images.
type Handler struct {
	log *slog.Logger
	cfg config.Images
}

// New creates a Handler.
func New(log *slog.Logger, cfg config.Images) *Handler {
	return &Handler{log: log, cfg: cfg}
}

// ServeHTTP accepts a multipart upload under the "image" field.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.diary.imageupload"

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

	maxBytes := h.cfg.MaxSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		log.Error("failed to read multipart image", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(fmt.Sprintf("image field required, max size %dMB", h.cfg.MaxSizeMB)))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		log.Info("rejected upload extension", slog.String("ext", ext))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("unsupported image type, use jpg, png, gif or webp"))
		return
	}

	dir := filepath.Join(h.cfg.StoragePath, fmt.Sprintf("%d", userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("failed to create storage directory", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to store image"))
		return
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		log.Error("failed to create image file", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to store image"))
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		log.Error("failed to write image file", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to store image"))
		return
	}

	url := fmt.Sprintf("%s/%d/%s", strings.TrimRight(h.cfg.PublicBase, "/"), userID, name)

	log.Info("image stored",
		slog.String("file", name),
		slog.Int64("size_bytes", written))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"image_url":  url,
		"size_bytes": written,
	}))
}
