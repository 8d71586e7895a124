// Package ratelimit provides the counter stores behind the abuse guard.
// The guard middleware owns no state of its own; it is handed a Store so
// the limiter can be exercised in isolation and swapped between the
// in-process map and Redis without touching the middleware.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Hit.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int           // admissions left in the current window
	RetryAfter time.Duration // time until the window rolls over; set when blocked
}

// Store counts hits per key inside fixed windows.  Hit atomically performs
// the read-check-increment for one key: two concurrent calls must never
// both observe the same pre-increment count.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
