package fetcher

import (
	"math/rand/v2"
	"time"
)

// backoffDelay returns the wait before the attempt following failed
// attempt i (0-indexed): base*(2^(i+1)-1) plus uniform jitter in
// [0, base).
func backoffDelay(attempt int, base time.Duration) time.Duration {
	scaled := base * time.Duration((1<<(attempt+1))-1)
	jitter := time.Duration(rand.Int64N(int64(base)))
	return scaled + jitter
}
