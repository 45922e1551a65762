package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/aggregate"
	"github.com/maxviazov/community-hub-service/internal/auth"
	"github.com/maxviazov/community-hub-service/internal/config"
	"github.com/maxviazov/community-hub-service/internal/handler"
	"github.com/maxviazov/community-hub-service/internal/logger"
	"github.com/maxviazov/community-hub-service/internal/mailer"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/repository/postgres"
	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/internal/storage"
	"github.com/maxviazov/community-hub-service/internal/telemetry"
)

func main() {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service stopped with error")
	}
	appLogger.Info().Msg("👋 Service stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	db, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		return fmt.Errorf("postgres connection: %w", err)
	}
	defer db.Close()

	pool := db.Pool()
	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		appLogger.Info().Msg("✅ Migrations applied")
	}

	cols := cfg.Collections
	events := postgres.NewEventRepository(pool, cols.Events)
	attendees := postgres.NewEventRegistrationRepository(pool, cols.EventRegistrations)
	community := postgres.NewCommunityRegistrationRepository(pool, cols.Registrations)
	txm := postgres.NewTxManager(pool)
	coreTeam := postgres.NewCoreTeamRepository(pool, cols.CoreTeam)
	emailLogs := postgres.NewEmailLogRepository(pool, cols.EmailLogs)
	activities := postgres.NewActivityRepository(pool, cols.Activities)
	admins := postgres.NewAdminRepository(pool, cols.Admins)

	agg := aggregate.New(postgres.NewStore(pool), aggregate.Options{
		MaxConcurrency: cfg.Feed.MaxConcurrency,
		QueryTimeout:   cfg.Feed.QueryTimeout,
	}, appLogger)

	var sender mailer.Sender = mailer.NewNoopSender(appLogger)
	if cfg.Email.APIKey != "" {
		sender = mailer.NewResendSender(cfg.Email.APIKey, cfg.Email.From, appLogger)
	} else {
		appLogger.Warn().Msg("email api key not set, outbound mail is logged only")
	}

	objects, err := storage.NewS3(ctx, cfg.Storage, appLogger)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	deps := handler.Deps{
		DB:        db,
		Dashboard: service.NewDashboardService(agg, activities, cols, appLogger),
		Events: service.NewEventService(service.EventDeps{
			Events:        events,
			Registrations: attendees,
			EmailLogs:     emailLogs,
			Activities:    activities,
			Tx:            txm,
		}, agg, cols, appLogger),
		Registrations: service.NewRegistrationService(service.RegistrationDeps{
			Community:  community,
			Attendees:  attendees,
			Events:     events,
			EmailLogs:  emailLogs,
			Activities: activities,
			Sender:     sender,
			Tx:         txm,
		}, agg, cfg, appLogger),
		CoreTeam: service.NewCoreTeamService(coreTeam, activities, appLogger),
		Email: service.NewEmailService(service.EmailDeps{
			Events:     events,
			Community:  community,
			Attendees:  attendees,
			EmailLogs:  emailLogs,
			Activities: activities,
			Sender:     sender,
		}, cfg, appLogger),
		Auth:   service.NewAuthService(admins, activities, tokens, cfg.Auth.AdminToken, appLogger),
		Upload: service.NewUploadService(objects, cfg.Storage.MaxUploadBytes, appLogger),
		Cookie: handler.CookieOptions{Secure: cfg.App.Env == "prod", MaxAge: cfg.Auth.TokenTTL},
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.AccessLog(appLogger))
	r.MaxMultipartMemory = cfg.Storage.MaxUploadBytes
	handler.Register(r, deps, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Int("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("🚀 Service started")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
