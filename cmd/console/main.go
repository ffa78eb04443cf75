package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quantix/quantix-console/internal/app"
	"github.com/quantix/quantix-console/internal/auth"
	"github.com/quantix/quantix-console/internal/console"
	"github.com/quantix/quantix-console/internal/guard"
	"github.com/quantix/quantix-console/internal/observability"
	"github.com/quantix/quantix-console/internal/platform/cache"
	"github.com/quantix/quantix-console/internal/reports"
	"github.com/quantix/quantix-console/internal/shared"
	"github.com/quantix/quantix-console/internal/view"
	"github.com/quantix/quantix-console/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr, 5*time.Second)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "quantix_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	g := guard.New(cfg.LoginPath, logger)
	g.OnForcedLogout(metrics.ForcedLogout)
	backend := app.NewBackend(cfg, logger, metrics)

	authHandler := auth.NewHandler(logger, auth.NewService(cfg.AuthLoginPath), templates, csrfManager, g, backend.Connector())
	consoleHandler := console.NewHandler(logger, templates, csrfManager, g, backend.Connector())

	var (
		reportHandler *report.Handler
		pdf           reports.PDFRenderer
	)
	if cfg.GotenbergURL != "" {
		reportClient := report.NewClient(cfg.GotenbergURL, cfg.APITimeout)
		reportHandler = report.NewHandler(reportClient, logger)
		pdf = reportClient
	}
	reportsHandler := reports.NewHandler(logger, templates, csrfManager, g, backend.Connector(), pdf)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Guard:          g,
		AuthHandler:    authHandler,
		ConsoleHandler: consoleHandler,
		ReportsHandler: reportsHandler,
		ReportHandler:  reportHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
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
