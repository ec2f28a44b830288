package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := New()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("BTCUSD", 5, 0), "call %d within capacity", i)
	}
	assert.False(t, l.Allow("BTCUSD", 5, 0), "bucket exhausted")
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()

	assert.True(t, l.Allow("BTCUSD", 1, 0))
	assert.False(t, l.Allow("BTCUSD", 1, 0))
	assert.True(t, l.Allow("ETHUSD", 1, 0), "a drained key does not affect others")
}

func TestAllowRefills(t *testing.T) {
	l := New()

	assert.True(t, l.Allow("BTCUSD", 1, 100))
	assert.False(t, l.Allow("BTCUSD", 1, 100))

	time.Sleep(20 * time.Millisecond) // 100/s refills a full token in 10ms
	assert.True(t, l.Allow("BTCUSD", 1, 100))
}

func TestRefillCapsAtCapacity(t *testing.T) {
	l := New()

	assert.True(t, l.Allow("BTCUSD", 2, 50))
	time.Sleep(100 * time.Millisecond) // refills well past capacity

	// Only capacity tokens are available after an idle period.
	assert.True(t, l.Allow("BTCUSD", 2, 50))
	assert.True(t, l.Allow("BTCUSD", 2, 50))
	assert.False(t, l.Allow("BTCUSD", 2, 50))
}
