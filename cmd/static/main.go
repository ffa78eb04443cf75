// Command static serves the console's front-end bundle: files from a
// directory, with index.html answering every path that is not a file.
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
	"github.com/kelseyhightower/envconfig"

	"github.com/quantix/quantix-console/internal/app"
)

type staticConfig struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	Port      string `envconfig:"PORT" default:"5000"`
	Dir       string `envconfig:"STATIC_DIR" default:"."`
}

func loadStaticConfig() (staticConfig, error) {
	var cfg staticConfig
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadStaticConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(&app.Config{AppEnv: cfg.AppEnv, LogFormat: cfg.LogFormat})
	port, dir := cfg.Port, cfg.Dir

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           newHandler(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("serving static files", slog.String("url", "http://localhost:"+port), slog.String("dir", dir))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
