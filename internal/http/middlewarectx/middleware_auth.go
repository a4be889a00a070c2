// Package middlewarectx holds the HTTP middleware of the server: JWT
// authentication, admin role checks, API-key checks and rate limiting.
// Authenticated identity travels through the request context under the
// keys defined here.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/http/response"
	"github.com/overmind-app/overmind/internal/lib/jwt"
	"github.com/overmind-app/overmind/internal/lib/sl"
)

// Key is the context key type of this package.
type Key string

const (
	// UserID holds the authenticated user's ID (int64).
	UserID Key = "user_id"
	// Email holds the authenticated user's email.
	Email Key = "email"
	// Role holds the authenticated user's role.
	Role Key = "role"
)

// UserIDFromContext extracts the authenticated user ID set by
// JWTMiddleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserID).(int64)
	return id, ok
}

// RoleFromContext extracts the authenticated role set by JWTMiddleware.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(Role).(string)
	return role, ok
}

// JWTMiddleware validates the bearer token in Authorization and stores the
// user identity in the request context. Invalid tokens get a 401 with the
// invalid-token error code.
func JWTMiddleware(maker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				renderUnauthorized(w, r, "인증 토큰이 없습니다.")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				renderUnauthorized(w, r, "유효하지 않거나 만료된 토큰입니다.")
				return
			}

			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, Email, claims.Email)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func renderUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.DomainError{
		Status:    response.StatusError,
		ErrorCode: apperr.CodeInvalidToken,
		Message:   message,
	})
}
