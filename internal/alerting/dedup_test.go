package alerting_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"safetyshare/internal/alerting"
)

func TestDedupCache_CooldownCycle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := alerting.NewDedupCache(10*time.Minute, clock)

	user := uuid.New()
	hazard := uuid.New()

	assert.True(t, cache.ShouldEmit(user, hazard), "first sighting must emit")

	cache.RecordEmission(user, hazard)
	assert.False(t, cache.ShouldEmit(user, hazard), "inside cooldown must suppress")

	clock.Advance(10*time.Minute + time.Millisecond)
	assert.True(t, cache.ShouldEmit(user, hazard), "after cooldown must emit again")
}

func TestDedupCache_RecordIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := alerting.NewDedupCache(10*time.Minute, clock)

	user := uuid.New()
	hazard := uuid.New()

	cache.RecordEmission(user, hazard)
	clock.Advance(5 * time.Minute)
	cache.RecordEmission(user, hazard)

	// Second write refreshed the timestamp, so 6 more minutes is still muted.
	clock.Advance(6 * time.Minute)
	assert.False(t, cache.ShouldEmit(user, hazard))

	clock.Advance(5 * time.Minute)
	assert.True(t, cache.ShouldEmit(user, hazard))
}

func TestDedupCache_UsersAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := alerting.NewDedupCache(10*time.Minute, clock)

	hazard := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	cache.RecordEmission(alice, hazard)

	assert.False(t, cache.ShouldEmit(alice, hazard))
	assert.True(t, cache.ShouldEmit(bob, hazard))
}

func TestDedupCache_SweepBoundsEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := alerting.NewDedupCache(10*time.Minute, clock)

	user := uuid.New()
	for i := 0; i < 25; i++ {
		cache.RecordEmission(user, uuid.New())
	}
	assert.Equal(t, 25, cache.Len(user))

	// All 25 age out; the next lookup crosses the sweep threshold and drops them.
	clock.Advance(11 * time.Minute)
	cache.ShouldEmit(user, uuid.New())
	assert.Zero(t, cache.Len(user))
}

func TestDedupCache_Clear(t *testing.T) {
	cache := alerting.NewDedupCache(10*time.Minute, clockwork.NewFakeClock())

	user := uuid.New()
	hazard := uuid.New()
	cache.RecordEmission(user, hazard)
	cache.Clear(user)

	assert.True(t, cache.ShouldEmit(user, hazard))
}

func TestDedupCache_ConcurrentSameUser(t *testing.T) {
	cache := alerting.NewDedupCache(10*time.Minute, clockwork.NewRealClock())

	user := uuid.New()
	hazards := make([]uuid.UUID, 8)
	for i := range hazards {
		hazards[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h := hazards[(n+i)%len(hazards)]
				if cache.ShouldEmit(user, h) {
					cache.RecordEmission(user, h)
				}
			}
		}(w)
	}
	wg.Wait()

	// Every hazard was recorded at least once; last write wins is fine.
	for i, h := range hazards {
		assert.False(t, cache.ShouldEmit(user, h), fmt.Sprintf("hazard %d should be muted", i))
	}
}
