package ratelimit

import (
	"sync"
	"time"
)

// SlidingLogRateLimiter keeps an exact log of admission timestamps per
// key. On each check it drops timestamps older than the lookback
// window; if the remaining count has reached the cap the request is
// rejected and NOT recorded, otherwise the current time is appended
// and the request admitted.
//
// Unlike the token-bucket InMemoryRateLimiter this enforces a hard
// "at most N admissions per window" invariant, which is what the
// signup endpoint needs. Memory per key is bounded by the cap; the key
// space itself is unbounded (lazy cleanup only), which is acceptable
// at waitlist traffic levels.
type SlidingLogRateLimiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	logs map[string][]time.Time
	ops  uint64

	// now is swappable for tests.
	now func() time.Time
}

func NewSlidingLogRateLimiter(limit int, window time.Duration) *SlidingLogRateLimiter {
	return &SlidingLogRateLimiter{
		limit:  limit,
		window: window,
		logs:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (r *SlidingLogRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.limit, r.window
}

// IsLimited reports whether key has exhausted its admissions for the
// current window. The check-then-record sequence runs under the mutex,
// so two concurrent calls can never both claim the last slot.
func (r *SlidingLogRateLimiter) IsLimited(key string) (bool, error) {
	if key == "" {
		key = "__empty__"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	recent := pruneBefore(r.logs[key], cutoff)

	if len(recent) >= r.limit {
		// Rejected attempts do not consume a slot.
		r.logs[key] = recent
		return true, nil
	}

	r.logs[key] = append(recent, now)

	r.ops++
	if r.ops%1024 == 0 {
		r.cleanupLocked(cutoff)
	}

	return false, nil
}

func (r *SlidingLogRateLimiter) Close() error {
	return nil
}

// cleanupLocked drops keys whose every timestamp has aged out. Caller
// must hold r.mu.
func (r *SlidingLogRateLimiter) cleanupLocked(cutoff time.Time) {
	for key, stamps := range r.logs {
		if len(pruneBefore(stamps, cutoff)) == 0 {
			delete(r.logs, key)
		}
	}
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	// Timestamps are appended in order, so find the first one still
	// inside the window and keep the tail.
	for i, ts := range stamps {
		if ts.After(cutoff) {
			return stamps[i:]
		}
	}
	return nil
}
