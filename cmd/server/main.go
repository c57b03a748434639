package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	queue_publisher "github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/ticketing"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ready := map[string]handler.Pinger{}

	// Redis is optional unless it holds the user profiles.
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable; rate limiting and caching disabled", "err", err)
		rdb = nil
	} else {
		defer rdb.Close()
		ready["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	store, db, err := openProfileStore(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		ready["mysql"] = db
	}

	var notifier ticketing.Notifier
	if url := config.AMQPURL(); url != "" {
		pub := queue_publisher.NewPublisher(url, log)
		defer pub.Close()
		notifier = pub
		go func() {
			if err := queue.StartNoticeConsumer(ctx, url, "", log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notice consumer stopped", "err", err)
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set; notices are only logged")
	}

	sys := ticketing.NewSystem(config.LoadRuntimeConfig().Ticketing(), store, notifier, ticketing.WithLogger(log))

	cacheCfg := config.LoadCacheConfig()
	events := handler.NewEventHandler(sys.Events, sys.Query, log)
	if rdb != nil && cacheCfg.Enabled {
		events.CatalogChanged = func(ctx context.Context) error {
			return middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	router.RegisterRoutes(e, handler.Ready(ready))
	router.RegisterAPI(e, router.API{
		Users:        handler.NewUserHandler(sys.Users),
		Events:       events,
		Reservations: handler.NewReservationHandler(sys.Reservations),
		Limit:        middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		CatalogCache: middleware.NewRedisCache(cacheCfg, rdb, log),
	})

	addr := ":" + cfg.Port
	log.Info("listening", "addr", addr, "env", cfg.Env, "user_store", cfg.UserStore)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

// openProfileStore selects the user profile backend.  db is non-nil only
// for the MySQL store.
func openProfileStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (ticketing.ProfileStore, *sql.DB, error) {
	switch cfg.UserStore {
	case "mysql":
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewProfileRepo(db), db, nil
	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("USER_STORE=redis but redis is unavailable")
		}
		return repository.NewRedisProfileRepo(rdb, "user"), nil, nil
	default:
		return repository.NewMemoryProfileRepo(), nil, nil
	}
}
