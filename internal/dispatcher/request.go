package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"go-guildbuilder/internal/logging"
	"go-guildbuilder/pkg/util"
)

var (
	ErrRateLimited = errors.New("rate limited")
	ErrTooLarge    = errors.New("response body too large")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Status == fasthttp.StatusTooManyRequests || e.Status >= 500
}

type Client struct {
	pool   *HTTPPool
	limits *RateLimitMonitor
}

func NewClient(pool *HTTPPool, limits *RateLimitMonitor) *Client {
	if limits == nil {
		limits = NewRateLimitMonitor()
	}
	return &Client{pool: pool, limits: limits}
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.pool.Timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

// PostJSON sends payload as JSON and decodes a 2xx body into out when out
// is non-nil. route names the rate limit bucket.
func (c *Client) PostJSON(ctx context.Context, route, url string, headers map[string]string, payload, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.limits.CanExecute(route) {
		return fmt.Errorf("%s: %w", route, ErrRateLimited)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetBody(body)

	start := time.Now()
	if err := c.pool.GetClient().DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("%s request failed: %w", route, err)
	}
	c.limits.Update(resp, route)

	status := resp.StatusCode()
	logging.Debug("[HTTP] POST %s -> %d in %s", route, status, time.Since(start).Round(time.Millisecond))
	if status < 200 || status >= 300 {
		return &StatusError{Status: status, Body: util.Truncate(string(resp.Body()), 200)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", route, err)
	}
	return nil
}

// Get downloads url, refusing bodies over maxBytes.
func (c *Client) Get(ctx context.Context, url string, maxBytes int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.pool.GetClient().DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return nil, &StatusError{Status: status, Body: util.Truncate(string(resp.Body()), 200)}
	}
	if maxBytes > 0 && len(resp.Body()) > maxBytes {
		return nil, ErrTooLarge
	}
	return append([]byte(nil), resp.Body()...), nil
}
