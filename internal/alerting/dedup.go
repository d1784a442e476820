package alerting

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultCooldown is how long the same (user, hazard) alert stays muted
	// after it fired.
	DefaultCooldown = 10 * time.Minute

	// Once a user's entry set grows past this, a sweep drops expired pairs
	// before further processing. Bounds memory without a background job.
	sweepThreshold = 20
)

// DedupCache is the per-user, per-hazard cooldown ledger. It is the only
// owner of its entries: created at service start, torn down at shutdown,
// never written by anything else.
type DedupCache struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	cooldown time.Duration
	// user -> hazard -> moment the alert was last shown
	history map[uuid.UUID]map[uuid.UUID]time.Time
}

func NewDedupCache(cooldown time.Duration, clock clockwork.Clock) *DedupCache {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DedupCache{
		clock:    clock,
		cooldown: cooldown,
		history:  make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

// ShouldEmit reports whether the user may be alerted about the hazard: no
// entry yet, or the existing one aged past the cooldown window.
func (c *DedupCache) ShouldEmit(userID, hazardID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	userHistory, ok := c.history[userID]
	if !ok {
		return true
	}

	if len(userHistory) > sweepThreshold {
		c.sweepLocked(userID)
	}

	lastShown, ok := userHistory[hazardID]
	if !ok {
		return true
	}
	return c.clock.Since(lastShown) > c.cooldown
}

// RecordEmission stamps the pair with the current time. Idempotent; a racing
// second write just refreshes the timestamp.
func (c *DedupCache) RecordEmission(userID, hazardID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	userHistory, ok := c.history[userID]
	if !ok {
		userHistory = make(map[uuid.UUID]time.Time)
		c.history[userID] = userHistory
	}
	userHistory[hazardID] = c.clock.Now()
}

// Clear drops all entries for a user, e.g. when their route changes enough
// that re-alerting is the right call.
func (c *DedupCache) Clear(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.history, userID)
}

// Len returns the number of live entries for a user.
func (c *DedupCache) Len(userID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history[userID])
}

// sweepLocked removes the user's expired entries. Caller holds c.mu.
func (c *DedupCache) sweepLocked(userID uuid.UUID) {
	userHistory := c.history[userID]
	if userHistory == nil {
		return
	}

	now := c.clock.Now()
	for hazardID, shownAt := range userHistory {
		if now.Sub(shownAt) > c.cooldown {
			delete(userHistory, hazardID)
		}
	}
	if len(userHistory) == 0 {
		delete(c.history, userID)
	}
}
