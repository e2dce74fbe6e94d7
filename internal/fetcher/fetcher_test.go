package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adboard/internal/fetcher"
	"github.com/jonesrussell/adboard/internal/logger"
)

const testPageBody = `<html><head><title>Test listing</title></head><body></body></html>`

// testConfig keeps retries fast in tests.
func testConfig() fetcher.Config {
	return fetcher.Config{
		MaxRetries:     2,
		BackoffBase:    time.Millisecond,
		AttemptTimeout: 5 * time.Second,
		MaxRedirects:   5,
	}
}

// countingServer returns a test server that runs handler and counts requests.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	server, calls := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPageBody))
	})

	f := fetcher.New(testConfig(), logger.NewNoOp())

	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, testPageBody, body)
	assert.Equal(t, int64(1), calls.Load())
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotReferer, gotCacheControl string

	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		gotCacheControl = r.Header.Get("Cache-Control")
		_, _ = w.Write([]byte(testPageBody))
	})

	f := fetcher.New(testConfig(), logger.NewNoOp())

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, "https://www.avito.ru/", gotReferer)
	assert.Equal(t, "no-cache", gotCacheControl)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var served atomic.Int64

	server, calls := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if served.Add(1) <= 2 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(testPageBody))
	})

	f := fetcher.New(testConfig(), logger.NewNoOp())

	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, testPageBody, body)
	assert.Equal(t, int64(3), calls.Load())
}

func TestFetchExhaustedOnPersistentUnavailable(t *testing.T) {
	t.Parallel()

	server, calls := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	cfg := testConfig()
	f := fetcher.New(cfg, logger.NewNoOp())

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrExhausted)
	assert.Contains(t, err.Error(), "http status 503", "exhaustion should carry the last cause")
	assert.Equal(t, int64(cfg.MaxRetries+1), calls.Load())
}

func TestFetchFatalOnNotFound(t *testing.T) {
	t.Parallel()

	server, calls := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	f := fetcher.New(testConfig(), logger.NewNoOp())

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrFatal)
	assert.Equal(t, int64(1), calls.Load(), "fatal failures must not retry")
}

func TestFetchFollowsRedirects(t *testing.T) {
	t.Parallel()

	target, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPageBody))
	})

	hop, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	})

	f := fetcher.New(testConfig(), logger.NewNoOp())

	body, err := f.Fetch(context.Background(), hop.URL)
	require.NoError(t, err)
	assert.Equal(t, testPageBody, body)
}

func TestFetchRedirectLoopIsFatal(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server, _ = countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL, http.StatusFound)
	})

	f := fetcher.New(testConfig(), logger.NewNoOp())

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrFatal)
}

func TestFetchTimeoutIsRetryable(t *testing.T) {
	t.Parallel()

	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	cfg := testConfig()
	cfg.AttemptTimeout = 20 * time.Millisecond
	f := fetcher.New(cfg, logger.NewNoOp())

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrExhausted)
	assert.Equal(t, int64(cfg.MaxRetries+1), calls.Load())
}

func TestFetchUnknownHostExhaustsRetries(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	f := fetcher.New(cfg, logger.NewNoOp())

	_, err := f.Fetch(context.Background(), "http://no-such-host.invalid/")
	require.Error(t, err)
	assert.False(t, errors.Is(err, fetcher.ErrFatal), "dns failures are retryable")
	assert.ErrorIs(t, err, fetcher.ErrExhausted)
}
