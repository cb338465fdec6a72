package auth

import "sync"

const DefaultMaxFailedLogins = 3

// Throttler counts consecutive failed logins per username. Once the count
// reaches the limit the username stays locked until a successful login
// resets it; there is no time-based decay.
type Throttler struct {
	mu       sync.Mutex
	limit    int
	failures map[string]int
}

func NewThrottler(limit int) *Throttler {
	if limit <= 0 {
		limit = DefaultMaxFailedLogins
	}
	return &Throttler{limit: limit, failures: make(map[string]int)}
}

func (t *Throttler) Limit() int { return t.limit }

func (t *Throttler) FailureCount(username string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[username]
}

// RecordFailure increments the count and returns the new value.
func (t *Throttler) RecordFailure(username string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[username]++
	return t.failures[username]
}

func (t *Throttler) RecordSuccess(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[username] = 0
}

func (t *Throttler) Locked(username string) bool {
	return t.FailureCount(username) >= t.limit
}
