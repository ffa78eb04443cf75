package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/guard"
	"github.com/quantix/quantix-console/internal/observability"
	"github.com/quantix/quantix-console/internal/resource"
	"github.com/quantix/quantix-console/internal/session"
)

// Backend builds per-request API clients. The HTTP transport is shared; the
// credential store is always the session of the request being served.
type Backend struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewBackend prepares a Backend for cfg.APIBaseURL.
func NewBackend(cfg *Config, logger *slog.Logger, metrics *observability.Metrics) *Backend {
	return &Backend{
		baseURL:    cfg.APIBaseURL,
		httpClient: &http.Client{Timeout: cfg.APITimeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Client returns a client reading its token from the session in ctx. A 401
// outcome trips the request's logout latch.
func (b *Backend) Client(ctx context.Context) *apiclient.Client {
	opts := []apiclient.Option{
		apiclient.WithHTTPClient(b.httpClient),
		apiclient.WithLogger(b.logger),
		apiclient.WithUnauthorizedHook(guard.Expire),
	}
	if b.metrics != nil {
		opts = append(opts, apiclient.WithObserver(b.metrics))
	}
	return apiclient.New(b.baseURL, session.FromContext(ctx), opts...)
}

// Connector adapts Client for controllers.
func (b *Backend) Connector() resource.Connector {
	return func(ctx context.Context) resource.Sender {
		return b.Client(ctx)
	}
}
