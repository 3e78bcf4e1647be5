package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"trip-planner-service/internal/metrics"

	"golang.org/x/time/rate"
)

// StatusError is returned for upstream responses with status >= 400.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Client wraps an http.Client with request pacing and retry/backoff.
// It is safe for concurrent use.
type Client struct {
	Name        string
	HTTP        *http.Client
	Limiter     *rate.Limiter
	MaxAttempts int
	Backoff     time.Duration
}

// NewClient returns a client with a 10s timeout, 4 attempts and 200ms
// doubling backoff. A non-positive perSecond disables pacing.
func NewClient(name string, perSecond float64) *Client {
	c := &Client{
		Name:        name,
		HTTP:        &http.Client{Timeout: 10 * time.Second},
		MaxAttempts: 4,
		Backoff:     200 * time.Millisecond,
	}
	if perSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return c
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// Do retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
// makeReq is called once per attempt so request bodies can be rebuilt.
func (c *Client) Do(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := c.Backoff

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait for rate limiter: %w", err)
			}
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			metrics.UpstreamCalls.WithLabelValues(c.Name, "ok").Inc()
			return resp, nil
		}
		lastErr = err

		if !Retryable(err) || attempt == attempts {
			metrics.UpstreamCalls.WithLabelValues(c.Name, "error").Inc()
			return nil, lastErr
		}
		metrics.UpstreamCalls.WithLabelValues(c.Name, "retry").Inc()

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// Retryable reports whether err is a transient upstream failure.
func Retryable(err error) bool {
	var he *StatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
