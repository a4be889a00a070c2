// Package overmind assembles the diary backend: storage, cache, message
// broker, AI gateway, domain services and the HTTP server.
package overmind

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/cache"
	"github.com/overmind-app/overmind/internal/config"
	"github.com/overmind-app/overmind/internal/lib/jwt"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/migrations"
	"github.com/overmind-app/overmind/internal/rabbitmq"
	adminservice "github.com/overmind-app/overmind/internal/services/admin"
	authservice "github.com/overmind-app/overmind/internal/services/auth"
	conversationservice "github.com/overmind-app/overmind/internal/services/conversation"
	diaryservice "github.com/overmind-app/overmind/internal/services/diary"
	"github.com/overmind-app/overmind/internal/services/modelselector"
	translationservice "github.com/overmind-app/overmind/internal/services/translation"
	"github.com/overmind-app/overmind/internal/storage"
)

// App owns the HTTP server and the process-lifetime resources.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	amqpConn interface{ Close() error }
}

// New wires the whole application. Redis and RabbitMQ are optional: a
// failed connection degrades caching and event publishing instead of
// aborting startup.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	var priorityCache modelselector.PriorityCache
	var invalidator adminservice.CacheInvalidator
	redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis unavailable, priority caching disabled", sl.Err(err))
	} else {
		priorityCache = redisCache
		invalidator = redisCache
	}

	var amqpConn interface{ Close() error }
	var publisher *rabbitmq.Publisher
	conn, ch, err := rabbitmq.Connect(cfg.AMQPConnectionString)
	if err != nil {
		logger.Warn("rabbitmq unavailable, diary events disabled", sl.Err(err))
		publisher = rabbitmq.NewPublisher(nil)
	} else {
		amqpConn = conn
		publisher = rabbitmq.NewPublisher(ch)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	gateway := aiclient.New(cfg.AIProviders)

	selector := modelselector.New(logger, db, priorityCache)
	authSvc := authservice.New(db, jwtMaker)
	conversationSvc := conversationservice.New(logger, db, selector, gateway)
	diarySvc := diaryservice.New(logger, db, gateway, publisher)
	translationSvc := translationservice.New(gateway)
	adminSvc := adminservice.New(logger, db, invalidator)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, routeServices{
		auth:         authSvc,
		conversation: conversationSvc,
		diary:        diarySvc,
		translation:  translationSvc,
		admin:        adminSvc,
		gateway:      gateway,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqpConn != nil {
			_ = a.amqpConn.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
