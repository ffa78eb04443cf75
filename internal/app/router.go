package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/quantix/quantix-console/internal/auth"
	"github.com/quantix/quantix-console/internal/console"
	"github.com/quantix/quantix-console/internal/guard"
	"github.com/quantix/quantix-console/internal/observability"
	"github.com/quantix/quantix-console/internal/platform/httpx"
	"github.com/quantix/quantix-console/internal/reports"
	"github.com/quantix/quantix-console/internal/shared"
	"github.com/quantix/quantix-console/report"
	"github.com/quantix/quantix-console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Guard          *guard.Guard
	AuthHandler    *auth.Handler
	ConsoleHandler *console.Handler
	ReportsHandler *reports.Handler
	ReportHandler  *report.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Status(w, http.StatusOK, "ok")
	})

	params.AuthHandler.MountRoutes(r)

	// Every screen below requires a stored token.
	r.Group(func(r chi.Router) {
		r.Use(params.Guard.RequireAuth)
		params.ConsoleHandler.MountRoutes(r)
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
	})

	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers keep static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
