package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/models"
)

// AdminOnly rejects requests whose authenticated role is not admin.
// Must run after JWTMiddleware.
func AdminOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminOnly"

			role, ok := RoleFromContext(r.Context())
			if !ok || role != models.RoleAdmin {
				log.Info("admin access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.DomainError{
					Status:    response.StatusError,
					ErrorCode: apperr.CodeInsufficientPermissions,
					Message:   "관리자 권한이 필요합니다.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
