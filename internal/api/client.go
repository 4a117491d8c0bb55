// Package api is the URZIS PASS backend client.
//
// Every operation reads the session fresh from the session store, builds a
// tenant-scoped request, sends it once and classifies the response. There
// are no retries, no caching and no background work. Operations take a
// context, which cancels the underlying HTTP request.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"urzis-pass/internal/session"
	"urzis-pass/internal/utils"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	store     *session.Store
	http      *http.Client
	userAgent string
	logger    *slog.Logger

	timeout *time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the transport. Its Timeout is kept unless WithTimeout
// is also given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero disables the timeout. It applies
// after all other options, whatever the order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "api")
	}
}

func New(store *session.Store, opts ...Option) *Client {
	c := &Client{
		store:     store,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: utils.UserAgent(),
		logger:    slog.With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.http
		hc.Timeout = *c.timeout
		c.http = &hc
	}
	return c
}

// do runs r against a freshly read session and decodes a 2xx body into out.
// A nil out ignores the body, and an empty body leaves out untouched unless
// r.requireBody is set.
func (c *Client) do(ctx context.Context, r request, out any) error {
	sess := c.store.Read(ctx)
	return c.send(ctx, sess, r, out)
}

func (c *Client) send(ctx context.Context, sess session.Session, r request, out any) error {
	if r.authenticated {
		if err := requireSession(sess); err != nil {
			return err
		}
	}

	req, err := buildRequest(ctx, sess, r)
	if err != nil {
		return err
	}

	requestID := utils.NewRequestID()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	logger := c.logger.With("request_id", requestID, "method", r.method, "path", r.path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Request failed", "error", err)
		return networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("Reading response failed", "status", resp.StatusCode, "error", err)
		return networkError(err)
	}

	logger.Debug("Request completed", "status", resp.StatusCode, "duration", time.Since(start))

	if apiErr := classify(resp.StatusCode, body, r.authenticated, r.defaultMessage); apiErr != nil {
		if apiErr.Kind == KindSessionExpired || apiErr.Kind == KindLicenseExpired {
			if err := c.store.Clear(ctx); err != nil {
				logger.Error("Failed to clear session", "error", err)
			}
		}
		logger.Info("Request rejected", "status", resp.StatusCode, "kind", apiErr.Kind.String(), "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	return decodeBody(resp.StatusCode, body, out, r.requireBody)
}
