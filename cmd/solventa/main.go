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
	"golang.org/x/sync/errgroup"

	"github.com/solventa-app/solventa/internal/app"
	"github.com/solventa-app/solventa/internal/auth"
	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/masterdata"
	"github.com/solventa-app/solventa/internal/observability"
	"github.com/solventa-app/solventa/internal/platform/cache"
	"github.com/solventa-app/solventa/internal/platform/db"
	"github.com/solventa-app/solventa/internal/rates"
	"github.com/solventa-app/solventa/internal/rbac"
	"github.com/solventa-app/solventa/internal/roles"
	"github.com/solventa-app/solventa/internal/sales"
	"github.com/solventa-app/solventa/internal/shared"
	"github.com/solventa-app/solventa/internal/users"
	"github.com/solventa-app/solventa/internal/view"
	"github.com/solventa-app/solventa/jobs"
	"github.com/solventa-app/solventa/report"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "solventa_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	rbacService := rbac.NewService(pool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	usersService := users.NewService(users.NewRepository(pool))
	usersHandler := users.NewHandler(logger, usersService, rbacService, templates, csrfManager, sessionManager, rbacMiddleware)
	rolesHandler := roles.NewHandler(logger, rbacService, templates, csrfManager, sessionManager, rbacMiddleware)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, templates, csrfManager, sessionManager, rbacMiddleware)

	masterdataService := masterdata.NewService(masterdata.NewRepository(pool))
	masterdataHandler := masterdata.NewHandler(logger, masterdataService, templates, csrfManager, sessionManager, rbacMiddleware)

	ratesService := rates.NewService(rates.NewRepository(pool))
	ratesHandler := rates.NewHandler(logger, ratesService, templates, csrfManager, sessionManager, rbacMiddleware)

	auditLogger := shared.NewAuditLogger(pool)
	ledgerService := collections.NewService(collections.NewRepository(pool), metrics, auditLogger)
	collectionsHandler := collections.NewHandler(logger, ledgerService, templates, csrfManager, sessionManager, rbacMiddleware)

	salesService := sales.NewService(sales.NewRepository(pool), ledgerService, masterdataService, metrics)
	salesHandler := sales.NewHandler(logger, salesService, ledgerService, ratesService, masterdataService, templates, csrfManager, sessionManager, rbacMiddleware)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, salesService, ledgerService, masterdataService, logger, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Templates:          templates,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		MasterDataHandler:  masterdataHandler,
		RatesHandler:       ratesHandler,
		SalesHandler:       salesHandler,
		CollectionsHandler: collectionsHandler,
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
