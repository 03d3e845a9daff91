package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	now := time.Now()
	rl := newRateLimiter(2, time.Second)
	rl.lastCheck = now
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow(), "bucket should be empty")

	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.allow(), "one token refilled")
	assert.False(t, rl.allow())

	now = now.Add(10 * time.Second)
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow(), "refill is capped at capacity")
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := newRateLimiter(3, 0)
	assert.Equal(t, 3.0, rl.capacity)
	assert.Equal(t, 3.0, rl.rate)
}

func TestRateLimiterDisabled(t *testing.T) {
	for _, burst := range []int{0, -1} {
		rl := newRateLimiter(burst, time.Second)
		assert.Nil(t, rl)
		for i := 0; i < 100; i++ {
			assert.True(t, rl.allow())
		}
	}
}
