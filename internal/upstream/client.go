// Package upstream wraps the backend portal REST API. Every call goes
// through the shared envelope decode ({success, message?, data}), the
// circuit breaker, and transport-level retry. Server-reported failures
// surface as *APIError with the backend message verbatim.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/worldofdc/portal-gateway/config"
	"github.com/worldofdc/portal-gateway/pkg/circuitbreaker"
	apperrors "github.com/worldofdc/portal-gateway/pkg/errors"
	"github.com/worldofdc/portal-gateway/pkg/httpclient"
	"github.com/worldofdc/portal-gateway/pkg/metrics"
	"github.com/worldofdc/portal-gateway/pkg/retry"
)

// APIError is a failure reported by the backend: either an HTTP error
// status or a {success:false} envelope. Message is shown to users as-is
// when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream request failed with status %d", e.StatusCode)
}

// Unwrap maps the status onto the shared error taxonomy so callers can
// branch with errors.Is instead of inspecting status codes.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return apperrors.ErrAccessDenied
	case e.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.StatusCode >= 500:
		return apperrors.ErrUnavailable
	case e.StatusCode >= 400:
		return apperrors.ErrInvalidInput
	}
	return nil
}

// TokenSource supplies the bearer credential attached to authenticated
// calls. The session store satisfies it.
type TokenSource interface {
	Token() string
}

type tokenContextKey struct{}

// WithToken returns a context carrying a per-request bearer token. It takes
// precedence over the client's TokenSource, which lets one shared client
// serve many browser sessions.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// Client is the typed wrapper over the portal backend.
type Client struct {
	baseURL  string
	http     httpclient.Client
	breaker  *gobreaker.CircuitBreaker
	retryCfg retry.Config
	tokens   TokenSource
}

// NewClient builds a client for the configured upstream. tokens may be nil
// when every call will carry its token via WithToken.
func NewClient(cfg config.UpstreamConfig, tokens TokenSource) *Client {
	return NewClientWithHTTP(cfg, httpclient.NewStandardClientWithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second), tokens)
}

// NewClientWithHTTP is NewClient with an injectable transport, for tests.
func NewClientWithHTTP(cfg config.UpstreamConfig, hc httpclient.Client, tokens TokenSource) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    hc,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("portal-backend")),
		retryCfg: retry.UpstreamConfig(cfg.MaxRetries, func(err error) bool {
			return isRetryable(err)
		}),
		tokens: tokens,
	}
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// doJSON performs one API operation and decodes the envelope data into T.
func doJSON[T any](ctx context.Context, c *Client, operation, method, path string, body any) (T, error) {
	var zero T
	start := time.Now()

	raw, err := retry.DoWithResult(ctx, c.retryCfg, operation, func() (json.RawMessage, error) {
		return circuitbreaker.Execute(c.breaker, func() (json.RawMessage, error) {
			return c.doOnce(ctx, method, path, body)
		})
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.UpstreamRequestDuration.WithLabelValues(operation, status).Observe(metrics.MeasureDuration(start))
	metrics.UpstreamRequestTotal.WithLabelValues(operation, status).Inc()

	if err != nil {
		return zero, err
	}
	if len(raw) == 0 {
		return zero, nil
	}
	if err := json.Unmarshal(raw, &zero); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", operation, err)
	}
	return zero, nil
}

// doAck is doJSON for operations whose data payload is irrelevant.
func doAck(ctx context.Context, c *Client, operation, method, path string, body any) error {
	_, err := doJSON[json.RawMessage](ctx, c, operation, method, path, body)
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}

	var env envelope
	if len(payload) > 0 {
		// A non-envelope body on an error status still yields a usable
		// APIError below; decode failures are only fatal on success.
		if err := json.Unmarshal(payload, &env); err != nil && resp.StatusCode < 400 {
			return nil, fmt.Errorf("decode response envelope: %w", err)
		}
	}

	if resp.StatusCode >= 400 || (len(payload) > 0 && !env.Success) {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

// Healthy reports whether the breaker still admits upstream traffic.
func (c *Client) Healthy() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := ctx.Value(tokenContextKey{}).(string); ok && token != "" {
		return token
	}
	if c.tokens != nil {
		return c.tokens.Token()
	}
	return ""
}

// isRetryable: transport failures and 5xx responses retry; anything the
// backend decided (4xx, success:false) and an open breaker do not.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	return true
}
