// Command server runs the Xevon studio backend: the row store, the change
// feed and the admin console API.
//
// @title                      Xevon Studio API
// @version                    1.0
// @description                Row store, change feed and admin console backend for the Xevon studio site.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Admin session token: "Bearer <token>"
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/docs"
	"github.com/xevon/studio-backend/internal/config"
	"github.com/xevon/studio-backend/internal/feed"
	httpapi "github.com/xevon/studio-backend/internal/http"
	"github.com/xevon/studio-backend/internal/observability"
	"github.com/xevon/studio-backend/internal/push"
	"github.com/xevon/studio-backend/internal/repo"
	"github.com/xevon/studio-backend/internal/services"
	"github.com/xevon/studio-backend/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	idempotencyPurgeEvery = 15 * time.Minute
	shutdownGrace         = 15 * time.Second
)

func main() {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	broker := feed.NewBroker(cfg.Feed.Buffer)
	defer broker.Close()

	if cfg.Feed.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Feed.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := feed.NewRedisRelay(rdb, cfg.Feed.Channel, broker).Start(ctx); err != nil {
			return err
		}
	}

	notifier := &push.Notifier{
		Tokens:  push.ContentTokenStore{DB: db},
		Sender:  push.NewSender(cfg.Push),
		Timeout: cfg.Push.Timeout,
	}
	defer notifier.Wait()
	if cfg.Push.ServerKey == "" {
		log.Warn().Msg("FCM_SERVER_KEY not set; push notifications are simulated")
	}
	if cfg.Admin.Key == "" {
		log.Warn().Msg("ADMIN_KEY not set; admin console disabled")
	}

	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.BasePath = cfg.APIBasePath

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Broker: broker, Push: notifier}, cfg)

	idem := services.NewIdempotencyService(db, cfg.IdempotencyTTL)
	go sysutil.RunEvery(ctx, idempotencyPurgeEvery, "idempotency_purge", func(ctx context.Context) error {
		n, err := idem.Purge(ctx)
		if err == nil && n > 0 {
			log.Debug().Int64("purged", n).Msg("expired idempotency keys removed")
		}
		return err
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	// closing the broker first ends feed sessions, which Shutdown does not track
	broker.Close()
	return srv.Shutdown(sctx)
}
