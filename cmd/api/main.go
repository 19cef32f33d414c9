// Copyright (c) 2026 InternPulse. All rights reserved.

// Command api is the entry point for the InternPulse HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Initialize token managers, ID generator, and the email mailer.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/internpulse/internpulse/internal/api"
	"github.com/internpulse/internpulse/internal/certificate"
	"github.com/internpulse/internpulse/internal/cohort"
	"github.com/internpulse/internpulse/internal/notification"
	"github.com/internpulse/internpulse/internal/payment"
	"github.com/internpulse/internpulse/internal/platform/config"
	"github.com/internpulse/internpulse/internal/platform/constants"
	"github.com/internpulse/internpulse/internal/platform/migration"
	pgstore "github.com/internpulse/internpulse/internal/platform/postgres"
	redisstore "github.com/internpulse/internpulse/internal/platform/redis"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/internal/users/account"
	"github.com/internpulse/internpulse/internal/users/auth"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "internpulse"))
	slog.SetDefault(log)

	log.Info("[InternPulse] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "internpulse"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Platform Services ──────────────────────────────────────────────
	tokenManager := sec.NewTokenManager(cfg.JWTSecret, constants.AuthIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	purposeCodec := sec.NewPurposeCodec(cfg.JWTSecret)

	generator, err := snowflake.New(cfg.DatacenterID, cfg.WorkerID)
	must(log, err, "initialize snowflake generator")

	// With no broker configured (local dev), emails go to the log.
	var (
		mailer      notification.Mailer
		checkBroker func() error
	)
	if cfg.AMQPURL != "" {
		amqpMailer, err := notification.NewAMQPMailer(startupCtx, cfg.AMQPURL, log)
		must(log, err, "connect to rabbitmq")
		defer func() {
			log.Info("closing amqp connection")
			if cerr := amqpMailer.Close(); cerr != nil {
				log.Error("amqp close error", slog.Any("error", cerr))
			}
		}()
		mailer = amqpMailer
		checkBroker = amqpMailer.Ping
	} else {
		log.Warn("AMQP_URL not set, outbound email will only be logged")
		mailer = notification.NewLogMailer(log)
	}

	// ── 7. Health Handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckBroker: checkBroker,
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	blacklistRepository := auth.NewBlacklistRepository(pool)
	rotationStore := auth.NewRotationStore(rdb)
	authService := auth.NewService(
		userRepository, blacklistRepository, rotationStore,
		tokenManager, purposeCodec, generator, mailer,
		auth.Config{
			OTPDigits:   cfg.OTPDigits,
			OTPPeriod:   cfg.OTPPeriod,
			FrontendURL: cfg.FrontendURL,
		},
	)

	notificationService := notification.NewService(
		notification.NewNotificationRepository(pool),
		notification.NewTicketRepository(pool),
		generator, mailer,
		notification.Config{SupportEmail: cfg.SupportEmail},
		log,
	)
	notifier := dashboardNotifier{service: notificationService}

	accountService := account.NewService(
		userRepository,
		account.NewProfileRepository(pool),
		account.NewDirectoryRepository(pool),
	)

	cohortService := cohort.NewService(cohort.NewRepository(pool), generator, notifier, log)

	certificateService := certificate.NewService(
		certificate.NewRepository(pool), cohortService, generator, notifier, log,
	)

	paymentService := payment.NewService(payment.NewRepository(pool), generator, notifier, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         auth.NewHandler(authService),
		Account:      account.NewHandler(accountService),
		Cohort:       cohort.NewHandler(cohortService),
		Certificate:  certificate.NewHandler(certificateService),
		Payment:      payment.NewHandler(paymentService),
		Notification: notification.NewHandler(notificationService),
	}

	// The server context outlives startup; it drives the rate limiter's
	// background cleanup for the life of the process.
	server := api.NewServer(context.Background(), cfg, log, tokenManager, blacklistRepository, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// dashboardNotifier adapts the notification service to the single-method
// Notifier interfaces the cohort, certificate, and payment services declare.
type dashboardNotifier struct {
	service *notification.Service
}

func (notifier dashboardNotifier) Notify(ctx context.Context, userID int64, title, message string) error {
	_, err := notifier.service.Notify(ctx, userID, title, message)
	return err
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
