package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tucano-platform/tucano-admin/internal/app"
	"github.com/tucano-platform/tucano-admin/internal/audit"
	"github.com/tucano-platform/tucano-admin/internal/auth"
	"github.com/tucano-platform/tucano-admin/internal/companies"
	"github.com/tucano-platform/tucano-admin/internal/establishments"
	"github.com/tucano-platform/tucano-admin/internal/lgpd"
	"github.com/tucano-platform/tucano-admin/internal/observability"
	"github.com/tucano-platform/tucano-admin/internal/platform/api"
	"github.com/tucano-platform/tucano-admin/internal/platform/cache"
	"github.com/tucano-platform/tucano-admin/internal/platform/db"
	"github.com/tucano-platform/tucano-admin/internal/rbac"
	"github.com/tucano-platform/tucano-admin/internal/shared"
	"github.com/tucano-platform/tucano-admin/internal/users"
	"github.com/tucano-platform/tucano-admin/internal/view"
	"github.com/tucano-platform/tucano-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, 10)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, "", 0)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "tucano_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	platformAPI := api.NewClient(api.ClientConfig{
		BaseURL: cfg.PlatformAPIURL,
		Timeout: cfg.PlatformAPITimeout,
	})
	privacyClient := lgpd.NewClient(lgpd.ClientConfig{
		BaseURL: cfg.PlatformAPIURL,
		Timeout: cfg.PlatformAPITimeout,
	})

	notifications := lgpd.NewQueue()
	registry := lgpd.NewRegistry(privacyClient, notifications, cfg.RevealAutoHide)
	go registry.Janitor(ctx, 5*time.Minute, cfg.RevealMaxIdle)

	activityLogger := shared.NewActivityLogger(dbpool)
	metrics := observability.NewMetrics()
	auditService := audit.NewService(privacyClient)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(platformAPI, authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, registry)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, cfg.DeletionFollowUpIn)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	companiesService := companies.NewService(companies.NewAPIRepository(platformAPI))
	companiesHandler := companies.NewHandler(companies.HandlerParams{
		Logger:    logger,
		Service:   companiesService,
		Templates: templates,
		CSRF:      csrfManager,
		Sessions:  sessionManager,
		RBAC:      rbacMiddleware,
		Registry:  registry,
		Privacy:   privacyClient,
		Audit:     auditService,
		Activity:  activityLogger,
		Queue:     notifications,
		Deletions: jobsClient,
		Idem:      shared.NewIdempotencyStore(dbpool),
		Metrics:   metrics,
	})

	usersService := users.NewService(users.NewAPIRepository(platformAPI))
	usersHandler := users.NewHandler(logger, usersService, templates, csrfManager, rbacMiddleware, registry, auditService, activityLogger, notifications, metrics)

	establishmentsService := establishments.NewService(establishments.NewAPIRepository(platformAPI))
	establishmentsHandler := establishments.NewHandler(logger, establishmentsService, templates, csrfManager, rbacMiddleware, notifications)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		Templates:             templates,
		SessionManager:        sessionManager,
		CSRFManager:           csrfManager,
		AuthHandler:           authHandler,
		CompaniesHandler:      companiesHandler,
		UsersHandler:          usersHandler,
		EstablishmentsHandler: establishmentsHandler,
		JobHandler:            jobHandler,
		Metrics:               metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
