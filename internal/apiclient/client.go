// Package apiclient issues authenticated JSON calls against the Quantix REST
// backend and folds every outcome into a success value or a classified *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quantix/quantix-console/internal/session"
)

const maxBodyBytes = 4 << 20

// Request describes one call. Path is relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
	// Route is an optional low-cardinality label for metrics, e.g. "/users/{id}".
	Route string
}

// Response is a successful outcome. Body is nil for 204 No Content.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Empty reports whether the response carried no payload.
func (r *Response) Empty() bool {
	return r == nil || len(r.Body) == 0
}

// Observer receives one notification per finished call.
type Observer interface {
	ObserveCall(method, route string, kind Kind, status int, elapsed time.Duration)
}

// Client sends requests on behalf of the holder of a session.Store.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          session.Store
	logger         *slog.Logger
	observer       Observer
	onUnauthorized func(context.Context)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport. Defaults to a client with a 15s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a metrics sink.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithUnauthorizedHook runs fn with the call context on every 401.
func WithUnauthorizedHook(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

var defaultHTTPClient = &http.Client{Timeout: 15 * time.Second}

// New builds a Client for baseURL that authenticates with the token in store.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: defaultHTTPClient,
		store:      store,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether a credential is available for the next call.
func (c *Client) Authenticated() bool {
	if c.store == nil {
		return false
	}
	_, ok := c.store.Token()
	return ok
}

// Send issues req and classifies the outcome.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	route := req.Route
	if route == "" {
		route = req.Path
	}

	start := time.Now()
	resp, err := c.send(ctx, method, req)
	elapsed := time.Since(start)

	kind, status := KindNone, 0
	if resp != nil {
		status = resp.Status
	}
	if err != nil {
		kind = KindOf(err)
		if e, ok := err.(*Error); ok {
			status = e.Status
		}
	}
	if c.observer != nil {
		c.observer.ObserveCall(method, route, kind, status, elapsed)
	}

	switch kind {
	case KindTransport:
		c.logger.Warn("api call failed", slog.String("method", method), slog.String("path", req.Path), slog.Any("error", err))
	case KindUnauthorized:
		c.logger.Info("api call unauthorized", slog.String("method", method), slog.String("path", req.Path))
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	default:
		c.logger.Debug("api call", slog.String("method", method), slog.String("path", req.Path),
			slog.Int("status", status), slog.Duration("elapsed", elapsed))
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, method string, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode %s %s: %w", method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s %s: %w", method, req.Path, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Del("Authorization")
	if c.store != nil {
		if token, ok := c.store.Token(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: method, Path: req.Path, Err: err}
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	return classify(method, req.Path, httpResp)
}

func (c *Client) url(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func classify(method, path string, resp *http.Response) (*Response, error) {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: "No autorizado", Method: method, Path: path}
	case http.StatusNoContent:
		return &Response{Status: resp.StatusCode}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Status: resp.StatusCode, Method: method, Path: path, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		raw = []byte("{}")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:    KindAPI,
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
			Method:  method,
			Path:    path,
		}
	}
	return &Response{Status: resp.StatusCode, Body: json.RawMessage(raw)}, nil
}

// errorMessage picks message, then error, then the fixed fallback.
func errorMessage(raw []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return FallbackMessage
	}
	for _, key := range []string{"message", "error"} {
		if text := textOf(body[key]); text != "" {
			return text
		}
	}
	return FallbackMessage
}

func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := list[:0]
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				parts = append(parts, item)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
