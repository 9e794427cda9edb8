package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_BurstThenBlocked(t *testing.T) {
	kl := New(1, 3)
	defer kl.Stop()

	passed := 0
	for range 5 {
		if kl.Allow("client") {
			passed++
		}
	}

	assert.Equal(t, 3, passed)
}

func TestAllow_IndependentKeys(t *testing.T) {
	kl := New(1, 1)
	defer kl.Stop()

	assert.True(t, kl.Allow("key1"))
	assert.False(t, kl.Allow("key1"))

	assert.True(t, kl.Allow("key2"))
}

func TestAllow_RefillsOverTime(t *testing.T) {
	kl := New(20, 1) // one token every 50ms
	defer kl.Stop()

	assert.True(t, kl.Allow("client"))
	assert.False(t, kl.Allow("client"))

	time.Sleep(80 * time.Millisecond)
	assert.True(t, kl.Allow("client"))
}

func TestEvictIdle(t *testing.T) {
	kl := New(1, 1)
	defer kl.Stop()

	kl.Allow("stale")
	kl.mu.Lock()
	kl.entries["stale"].lastSeen = time.Now().Add(-10 * time.Minute)
	kl.mu.Unlock()

	kl.Allow("fresh")

	kl.evictIdle(3 * time.Minute)

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.NotContains(t, kl.entries, "stale")
	assert.Contains(t, kl.entries, "fresh")
}

func TestStop_Idempotent(t *testing.T) {
	kl := New(1, 1)
	kl.Stop()
	kl.Stop()
}
