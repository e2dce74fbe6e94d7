// Package fetcher retrieves listing pages over HTTP with retry,
// exponential backoff, and a rotating browser header profile.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Sentinel errors. ErrExhausted wraps the last observed cause; callers
// treat it as a retryable failure that simply ran out of budget.
// ErrFatal marks conditions retrying cannot fix.
var (
	ErrExhausted = errors.New("fetch retries exhausted")
	ErrFatal     = errors.New("fetch failed permanently")
)

// Retryable HTTP status codes.
const (
	statusForbidden       = 403
	statusTooManyRequests = 429
	statusUnavailable     = 503
)

// Logger provides structured logging for the fetcher.
type Logger interface {
	Debug(msg string, fields ...any)
	Warn(msg string, fields ...any)
}

// Fetcher performs resilient HTTP GETs against the source site.
type Fetcher struct {
	client *http.Client
	cfg    Config
	log    Logger
}

// New creates a Fetcher with the given policy.
func New(cfg Config, log Logger) *Fetcher {
	cfg = cfg.withDefaults()

	client := &http.Client{
		Timeout: cfg.AttemptTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &Fetcher{client: client, cfg: cfg, log: log}
}

// Fetch retrieves the HTML body of url. Transient failures (429, 503,
// 403, timeouts, DNS errors) are retried with exponential backoff until
// the retry budget is spent, then reported as ErrExhausted carrying the
// last cause. Non-retryable conditions return ErrFatal immediately.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastCause error

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt-1, f.cfg.BackoffBase)
			f.log.Debug("backing off before retry",
				"url", url,
				"attempt", attempt,
				"delay", delay.String(),
			)

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", ErrExhausted, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, ErrFatal) {
			return "", err
		}

		lastCause = err
		f.log.Warn("fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"error", err.Error(),
		)
	}

	return "", fmt.Errorf("%w: %w", ErrExhausted, lastCause)
}

// attempt performs a single GET. Retryable failures come back as plain
// errors; anything wrapped in ErrFatal stops the retry loop.
func (f *Fetcher) attempt(ctx context.Context, url string) (string, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if reqErr != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrFatal, reqErr)
	}

	setBrowserHeaders(req)

	resp, doErr := f.client.Do(req)
	if doErr != nil {
		return "", classifyNetworkError(doErr)
	}
	defer resp.Body.Close()

	if retryable, fatal := classifyStatus(resp.StatusCode); retryable {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	} else if fatal {
		return "", fmt.Errorf("%w: http status %d", ErrFatal, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes)

	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return "", fmt.Errorf("read response body: %w", readErr)
	}

	return string(body), nil
}

// classifyStatus reports whether a status code is retryable or fatal.
// 2xx is neither. Redirects have already been followed up to the hop
// cap, so a surviving 3xx is fatal.
func classifyStatus(code int) (retryable, fatal bool) {
	switch {
	case code >= 200 && code < 300:
		return false, false
	case code == statusTooManyRequests || code == statusUnavailable || code == statusForbidden:
		return true, false
	default:
		return false, true
	}
}

// classifyNetworkError maps transport-level failures onto the retry
// taxonomy: timeouts and DNS failures are retryable, everything else
// is fatal.
func classifyNetworkError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("network timeout: %w", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("network timeout: %w", err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("dns failure: %w", err)
	}

	return fmt.Errorf("%w: %w", ErrFatal, err)
}
