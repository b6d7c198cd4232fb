package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultCatalogURL = "https://api.escuelajs.co/api/v1"
	DefaultDataURL    = "https://697a423e0e6ff62c3c58f63b.mockapi.io"
	DefaultTimeout    = 10 * time.Second

	maxErrorBody = 512
)

// NewHTTPClient returns a client whose requests carry trace context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Config configures one backend client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Breaker    *circuitbreaker.Config
	Logger     *slog.Logger
}

// transport issues JSON requests against one backend. Every failure surfaces
// once; nothing is retried.
type transport struct {
	baseURL string
	client  *http.Client
	breaker *circuitbreaker.Breaker
	logger  *slog.Logger
}

func newTransport(name, defaultURL string, cfg Config) *transport {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bc := circuitbreaker.DefaultConfig(name)
	if cfg.Breaker != nil {
		bc = *cfg.Breaker
		bc.Name = name
	}
	bc.IsSuccessful = func(err error) bool {
		return err == nil || isClientError(err) || errors.Is(err, context.Canceled)
	}

	return &transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		breaker: circuitbreaker.New(bc, logger),
		logger:  logger.With("component", "remote", "backend", name),
	}
}

// do sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil).
func (t *transport) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	err := t.breaker.Do(func() error {
		return t.roundTrip(ctx, method, path, query, body, out)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func (t *transport) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := t.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.WarnContext(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       strings.TrimSpace(string(raw)),
		}
		t.logger.DebugContext(ctx, "unexpected status", "method", method, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
