package overmind

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/config"
	"github.com/overmind-app/overmind/internal/http/handlers/admin/prioritylist"
	"github.com/overmind-app/overmind/internal/http/handlers/admin/priorityremove"
	"github.com/overmind-app/overmind/internal/http/handlers/admin/priorityupdate"
	"github.com/overmind-app/overmind/internal/http/handlers/admin/userlist"
	"github.com/overmind-app/overmind/internal/http/handlers/admin/userread"
	"github.com/overmind-app/overmind/internal/http/handlers/admin/userremove"
	"github.com/overmind-app/overmind/internal/http/handlers/admin/userupdate"
	"github.com/overmind-app/overmind/internal/http/handlers/ai/chat"
	"github.com/overmind-app/overmind/internal/http/handlers/ai/chatstream"
	"github.com/overmind-app/overmind/internal/http/handlers/auth/login"
	"github.com/overmind-app/overmind/internal/http/handlers/auth/profileget"
	"github.com/overmind-app/overmind/internal/http/handlers/auth/profileupdate"
	"github.com/overmind-app/overmind/internal/http/handlers/auth/register"
	"github.com/overmind-app/overmind/internal/http/handlers/conversation/active"
	"github.com/overmind-app/overmind/internal/http/handlers/conversation/complete"
	"github.com/overmind-app/overmind/internal/http/handlers/conversation/send"
	"github.com/overmind-app/overmind/internal/http/handlers/conversation/start"
	"github.com/overmind-app/overmind/internal/http/handlers/diary/bydate"
	"github.com/overmind-app/overmind/internal/http/handlers/diary/generate"
	"github.com/overmind-app/overmind/internal/http/handlers/diary/imageupload"
	"github.com/overmind-app/overmind/internal/http/handlers/diary/list"
	"github.com/overmind-app/overmind/internal/http/handlers/diary/read"
	"github.com/overmind-app/overmind/internal/http/handlers/diary/remove"
	"github.com/overmind-app/overmind/internal/http/handlers/health"
	"github.com/overmind-app/overmind/internal/http/handlers/translation/languages"
	"github.com/overmind-app/overmind/internal/http/handlers/translation/translate"
	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/lib/jwt"
	adminservice "github.com/overmind-app/overmind/internal/services/admin"
	authservice "github.com/overmind-app/overmind/internal/services/auth"
	conversationservice "github.com/overmind-app/overmind/internal/services/conversation"
	diaryservice "github.com/overmind-app/overmind/internal/services/diary"
	translationservice "github.com/overmind-app/overmind/internal/services/translation"
)

type routeServices struct {
	auth         *authservice.Service
	conversation *conversationservice.Service
	diary        *diaryservice.Service
	translation  *translationservice.Service
	admin        *adminservice.Service
	gateway      *aiclient.Gateway
}

// RegisterRoutes mounts every endpoint group of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker, svc routeServices) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(middlewarectx.RateLimitMiddleware(logger, rate.NewLimiter(rate.Limit(100), 200)))

	requireJWT := middlewarectx.JWTMiddleware(jwtMaker, logger)

	r.Route("/auth/api", func(r chi.Router) {
		r.Post("/signup", register.New(logger, svc.auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.auth).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(requireJWT)
			r.Get("/profile", profileget.New(logger, svc.auth).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, svc.auth).ServeHTTP)
		})
	})

	r.Route("/diary/api", func(r chi.Router) {
		r.Use(requireJWT)

		r.Post("/conversations", start.New(logger, svc.conversation).ServeHTTP)
		r.Get("/conversations/active", active.New(logger, svc.conversation).ServeHTTP)
		r.Post("/conversations/{id}/messages", send.New(logger, svc.conversation).ServeHTTP)
		r.Post("/conversations/{id}/complete", complete.New(logger, svc.conversation).ServeHTTP)

		r.Post("/diaries", generate.New(logger, svc.diary).ServeHTTP)
		r.Get("/diaries", list.New(logger, svc.diary).ServeHTTP)
		r.Get("/diaries/by-date", bydate.New(logger, svc.diary).ServeHTTP)
		r.Get("/diaries/{id}", read.New(logger, svc.diary).ServeHTTP)
		r.Delete("/diaries/{id}", remove.New(logger, svc.diary).ServeHTTP)

		r.Post("/images", imageupload.New(logger, cfg.Images).ServeHTTP)
	})

	// Gateway endpoints authenticate with a shared API key and carry their
	// own per-key sliding window on top of the global limiter.
	gatewayWindow := middlewarectx.NewSlidingWindow(cfg.RequestsPerMinute, time.Minute)
	r.Route("/ai/api", func(r chi.Router) {
		r.Use(middlewarectx.APIKeyMiddleware(cfg.GatewayAPIKey, logger))
		r.Use(gatewayWindow.Middleware(logger))
		r.Post("/req", chat.New(logger, svc.gateway).ServeHTTP)
		r.Post("/req/stream", chatstream.New(logger, svc.gateway).ServeHTTP)
	})

	r.Route("/translate/api", func(r chi.Router) {
		r.Post("/translate", translate.New(logger, svc.translation).ServeHTTP)
		r.Get("/languages", languages.New(logger, svc.translation).ServeHTTP)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(requireJWT)
		r.Use(middlewarectx.AdminOnly(logger))

		r.Get("/users", userlist.New(logger, svc.admin).ServeHTTP)
		r.Get("/users/{id}", userread.New(logger, svc.admin).ServeHTTP)
		r.Patch("/users/{id}", userupdate.New(logger, svc.admin).ServeHTTP)
		r.Delete("/users/{id}", userremove.New(logger, svc.admin).ServeHTTP)

		r.Get("/ai-priorities", prioritylist.New(logger, svc.admin).ServeHTTP)
		r.Put("/ai-priorities", priorityupdate.New(logger, svc.admin).ServeHTTP)
		r.Delete("/ai-priorities", priorityremove.New(logger, svc.admin).ServeHTTP)
	})

	r.Handle(cfg.Images.PublicBase+"/*", http.StripPrefix(cfg.Images.PublicBase+"/",
		http.FileServer(http.Dir(cfg.Images.StoragePath))))

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
