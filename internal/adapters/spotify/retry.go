package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond

	// maxRetryAfter caps the server's Retry-After so a rate-limited lookup
	// cannot hold a dashboard request indefinitely.
	maxRetryAfter = 30 * time.Second
)

// retryPolicy decides how often a Web API GET is repeated and how long to
// pause in between.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
	wait     func(context.Context, time.Duration) error
}

func newRetryPolicy(attempts int, backoff time.Duration) retryPolicy {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return retryPolicy{attempts: attempts, backoff: backoff, wait: sleepWithContext}
}

// delay is the pause after the given failed attempt (1-based). A Retry-After
// header replaces the exponential schedule.
func (p retryPolicy) delay(attempt int, resp *http.Response) time.Duration {
	if d := parseRetryAfter(resp); d > 0 {
		return min(d, maxRetryAfter)
	}
	return p.backoff << (attempt - 1)
}

// retryable reports whether a response is worth repeating: transport errors,
// rate limiting and server errors. 403 and 404 are answers, not failures.
func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

// get fetches baseURL+path under the retry policy. Every Web API call the
// adapter makes is a body-less GET, so each attempt builds a fresh request.
// The caller closes the returned body.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("spotify adapter: build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
		}
		if !retryable(resp, err) {
			return resp, nil
		}

		entry := logrus.WithFields(logrus.Fields{
			"attempt": attempt,
			"max":     c.retry.attempts,
			"path":    path,
		})
		var cause error
		if err != nil {
			cause = err
			entry.WithError(err).Warn("spotify adapter: request error")
		} else {
			cause = fmt.Errorf("status %d", resp.StatusCode)
			entry.WithField("status", resp.StatusCode).Warn("spotify adapter: retryable status")
			_ = resp.Body.Close()
		}

		if attempt >= c.retry.attempts {
			return nil, fmt.Errorf("spotify adapter: GET %s failed after %d attempts: %w", path, attempt, cause)
		}
		if err := c.retry.wait(ctx, c.retry.delay(attempt, resp)); err != nil {
			return nil, err
		}
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(raw); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
