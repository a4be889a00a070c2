package middlewarectx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/http/response"
)

// APIKeyHeader carries the gateway key on AI endpoints.
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware guards the AI gateway with a static API key.
func APIKeyMiddleware(expectedKey string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.APIKeyMiddleware"

			key := r.Header.Get(APIKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expectedKey)) != 1 {
				log.Info("rejected api key",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.DomainError{
					Status:    response.StatusError,
					ErrorCode: apperr.CodeInvalidToken,
					Message:   "invalid or missing API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
