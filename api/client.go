// Package api talks to the coffee shop backend. Every request path is
// resolved against the configured API server URL.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	attempts   uint
	delay      time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRetry configures how often idempotent requests are attempted and the
// delay between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		attempts:   defaultAttempts,
		delay:      defaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint prefixes path with the API server URL.
func (c *Client) Endpoint(path string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "invalid api server url %q", c.baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid api server url %q: missing scheme or host", c.baseURL)
	}

	return u.JoinPath(path).String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	endpoint, err := c.Endpoint(path)
	if err != nil {
		return err
	}

	var body []byte
	if in != nil {
		body, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}

	send := func() error {
		return c.send(ctx, method, endpoint, body, out)
	}

	if method != http.MethodGet {
		return send()
	}

	return retry.Do(
		send,
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && retryable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.WithField("attempt", n+1).Debugf("retrying %s %s: %s", method, endpoint, err)
		}),
	)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log.WithField("method", method).Debugf("requesting %s", endpoint)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot complete http request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		e := ErrorResponse{StatusCode: res.StatusCode}
		// the body is best effort, the status is what matters
		_ = json.NewDecoder(res.Body).Decode(&e)
		e.StatusCode = res.StatusCode
		return e
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.New("malformed body in response")
	}

	return nil
}

func retryable(err error) bool {
	var e ErrorResponse
	if errors.As(err, &e) {
		return e.StatusCode >= 500
	}

	var uerr *url.Error
	return errors.As(err, &uerr)
}
