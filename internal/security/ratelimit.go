package security

import (
	"sync"
	"time"
)

// slidingWindowLimiter enforces a sliding-window rate limit per key
// (client IP). Window length and burst are operator-configured.
//
// This is hand-rolled rather than built on golang.org/x/time/rate because
// x/time/rate implements token-bucket refill semantics, not the spec's
// exact sliding-window admission rule (count requests whose timestamps
// fall in [now-W, now], reject once the count reaches the burst).
type slidingWindowLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	burst   int
	buckets map[string][]time.Time
}

func newSlidingWindowLimiter(window time.Duration, burst int) *slidingWindowLimiter {
	return &slidingWindowLimiter{
		window:  window,
		burst:   burst,
		buckets: make(map[string][]time.Time),
	}
}

// Allow prunes timestamps older than now-window for key, then admits the
// request (recording now) if the remaining count is below burst.
func (l *slidingWindowLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	bucket := l.buckets[key]

	pruned := bucket[:0]
	for _, ts := range bucket {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}

	if len(pruned) >= l.burst {
		l.buckets[key] = pruned
		return false
	}

	l.buckets[key] = append(pruned, now)
	return true
}
