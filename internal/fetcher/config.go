package fetcher

import "time"

// Default fetch policy values.
const (
	DefaultMaxRetries     = 4
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultAttemptTimeout = 12 * time.Second
	DefaultMaxRedirects   = 5
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// Config controls the fetch retry policy.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BackoffBase is the base duration for exponential backoff.
	BackoffBase time.Duration
	// AttemptTimeout bounds each individual HTTP attempt.
	AttemptTimeout time.Duration
	// MaxRedirects caps redirect hops per attempt.
	MaxRedirects int
}

// DefaultConfig returns the default fetch policy.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     DefaultMaxRetries,
		BackoffBase:    DefaultBackoffBase,
		AttemptTimeout: DefaultAttemptTimeout,
		MaxRedirects:   DefaultMaxRedirects,
	}
}

// withDefaults fills zero or negative values with defaults.
func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	return c
}
