package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/quickcourt/internal/app"
	"github.com/iliyamo/quickcourt/internal/config"
	"github.com/iliyamo/quickcourt/internal/database"
	"github.com/iliyamo/quickcourt/internal/handler"
	"github.com/iliyamo/quickcourt/internal/middleware"
	"github.com/iliyamo/quickcourt/internal/queue"
	"github.com/iliyamo/quickcourt/internal/repository"
	"github.com/iliyamo/quickcourt/internal/router"
	"github.com/iliyamo/quickcourt/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := app.NewLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if v, err := database.Version(ctx, db); err == nil {
			logger.Info("database migrated", zap.Int64("version", v))
		}
	}

	// Redis is optional: without it the limiter and the catalog cache are
	// pass-through.
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, rate limiting and caching disabled", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		pub, err := queue.NewPublisher(cfg.AMQPURL, cfg.BookingExchange)
		if err != nil {
			logger.Warn("rabbitmq unavailable, booking events disabled", zap.Error(err))
		} else {
			defer pub.Close()
			events = pub
		}
		audit := queue.NewAuditLog(cfg.AuditLogDir)
		go func() {
			err := queue.StartAuditConsumer(ctx, cfg.AMQPURL, cfg.BookingExchange, audit, logger.Named("audit"))
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	courts := repository.NewCourtRepo(db)
	bookings := repository.NewBookingRepo(db)

	ledger := service.NewLedger(users, courts, venues, bookings, events, logger.Named("ledger"), service.LedgerConfig{
		SlotMinutes: cfg.SlotMinutes,
		Location:    cfg.VenueTimezone,
	})

	completer := app.NewCompleter(ledger, cfg.CompleterInterval, logger.Named("completer"))
	completer.Start(ctx)
	defer completer.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(logger.Named("http")))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, logger), cfg.JWTSecret)
	cacheCfg := config.LoadCacheConfig()
	catalogCache := middleware.NewCacheInvalidator(cacheCfg, rdb, logger)
	router.RegisterPublic(e,
		handler.NewPublicHandler(venues, courts, ledger, logger),
		middleware.NewRedisCache(cacheCfg, rdb, logger))
	router.RegisterBookings(e,
		handler.NewBookingHandler(ledger),
		cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))
	router.RegisterOwner(e, handler.NewOwnerHandler(venues, courts, catalogCache, logger), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(venues, catalogCache, logger), cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
