// Package api implements the HTTP client shared by every backend service
// group: base URL handling, JSON codec, bearer injection from a token
// source, and the retry-after-refresh behaviour on expired sessions.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/CarlosJoao1/vivae-erp-console/pkg/telemetry"
)

// TokenSource supplies the current access token and knows how to exchange
// the refresh token for a new one. The session manager implements it.
type TokenSource interface {
	Token() string
	Refresh(ctx context.Context) (string, error)
}

// TenantSource supplies the active tenant id for the X-Tenant-Id header.
type TenantSource interface {
	TenantID() string
}

// Client is a JSON HTTP client for the ERP backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	tokens     TokenSource
	tenant     TenantSource
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTokenSource sets the access-token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTenantSource sets the tenant-id source.
func WithTenantSource(ts TenantSource) Option {
	return func(c *Client) { c.tenant = ts }
}

// NewClient creates a client for the given API base URL, e.g.
// http://localhost:5000/api.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource wires the token source after construction. The session
// manager needs the client to exist before it can be built, so the wiring is
// completed in a second step.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

// SetTenantSource wires the tenant source after construction.
func (c *Client) SetTenantSource(ts TenantSource) { c.tenant = ts }

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", false, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, "", false, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, "", false, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, "", false, nil, nil)
}

// GetWithToken issues a GET with an explicit bearer token. Explicit-token
// requests never trigger a refresh; the auth flows use them to probe a
// specific token.
func (c *Client) GetWithToken(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, true, nil, out)
}

// PostWithToken issues a POST with an explicit bearer token.
func (c *Client) PostWithToken(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, token, true, body, out)
}

// isAuthPath reports whether the path belongs to the login/refresh
// endpoints, which must never trigger a token refresh themselves.
func isAuthPath(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/refresh")
}

func (c *Client) do(ctx context.Context, method, path, token string, explicit bool, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	ctx, span := telemetry.StartSpan(ctx, fmt.Sprintf("api.%s %s", method, path))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	if !explicit && c.tokens != nil {
		token = c.tokens.Token()
	}

	err := c.send(ctx, method, path, token, payload, out)
	if err == nil {
		return nil
	}

	// On an expired session, refresh once and replay the request. Explicit
	// token probes and the auth endpoints themselves are exempt. The second
	// attempt's failure, and a failed refresh, both surface as-is; a failed
	// refresh keeps the original 401 so the caller sees what happened first.
	if !explicit && c.tokens != nil && IsUnauthorized(err) && !isAuthPath(path) {
		newToken, refreshErr := c.tokens.Refresh(ctx)
		if refreshErr != nil {
			c.log.Debug("token refresh failed", zap.String("path", path), zap.Error(refreshErr))
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		err = c.send(ctx, method, path, newToken, payload, out)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path, token string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tenant != nil {
		if id := c.tenant.TenantID(); id != "" {
			req.Header.Set("X-Tenant-Id", id)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	}
	if traceID := telemetry.GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	c.log.Debug("api request", fields...)

	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, respBody)
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
