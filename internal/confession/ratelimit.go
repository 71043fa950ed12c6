package confession

import (
	"fmt"
	"sync"
	"time"
)

// Limiter enforces one submission per user per window. The last-submission
// map is process-lifetime state; the mutex makes the check-then-reserve
// sequence atomic so two concurrent submissions cannot both pass. The lock
// is never held across I/O.
type Limiter struct {
	window time.Duration

	mu   sync.Mutex
	last map[uint64]time.Time
	now  func() time.Time
}

// NewLimiter creates a rate limiter with the given window.
func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{
		window: window,
		last:   make(map[uint64]time.Time),
		now:    time.Now,
	}
}

// Window returns the configured rate-limit window.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Reserve atomically checks the user's quota and records a submission
// time. When the user is still inside the window it returns the remaining
// wait and false, leaving the previous reservation untouched.
func (l *Limiter) Reserve(userID uint64) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, ok := l.last[userID]; ok {
		if elapsed := now.Sub(last); elapsed < l.window {
			return l.window - elapsed, false
		}
	}

	l.last[userID] = now

	return 0, true
}

// Release rolls back a reservation so a user is not penalized when the
// submission failed for system reasons.
func (l *Limiter) Release(userID uint64) {
	l.mu.Lock()
	delete(l.last, userID)
	l.mu.Unlock()
}

// QuotaError reports a rejected submission and the remaining wait.
type QuotaError struct {
	Remaining time.Duration
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.Remaining.Round(time.Second))
}
