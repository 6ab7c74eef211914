package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelayBounds(t *testing.T) {
	b := Backoff{Base: 30 * time.Second, Max: time.Hour}

	// Each attempt doubles the floor; jitter adds at most half on top
	for attempts := 1; attempts <= 5; attempts++ {
		floor := b.Base * (1 << (attempts - 1))
		ceil := floor + floor/2
		for i := 0; i < 50; i++ {
			delay := b.Delay(attempts)
			assert.GreaterOrEqual(t, delay, floor, "attempt %d", attempts)
			assert.Less(t, delay, ceil, "attempt %d", attempts)
		}
	}
}

func TestBackoffNonDecreasing(t *testing.T) {
	b := Backoff{Base: 30 * time.Second, Max: time.Hour}

	prev := time.Duration(0)
	for attempts := 1; attempts <= 12; attempts++ {
		delay := b.Delay(attempts)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempts)
		prev = delay
	}
}

func TestBackoffCap(t *testing.T) {
	b := Backoff{Base: 30 * time.Second, Max: time.Hour}

	assert.Equal(t, time.Hour, b.Delay(10))
	assert.Equal(t, time.Hour, b.Delay(64))
}

func TestBackoffDefaults(t *testing.T) {
	var b Backoff

	delay := b.Delay(1)
	assert.GreaterOrEqual(t, delay, DefaultBackoffBase)
	assert.Less(t, delay, DefaultBackoffBase+DefaultBackoffBase/2)

	assert.Equal(t, DefaultBackoffMax, b.Delay(100))
}

func TestBackoffAttemptsFloor(t *testing.T) {
	b := Backoff{Base: 30 * time.Second, Max: time.Hour}

	// Attempts below one behave as the first attempt
	for _, attempts := range []int{0, -3} {
		delay := b.Delay(attempts)
		assert.GreaterOrEqual(t, delay, b.Base)
		assert.Less(t, delay, b.Base+b.Base/2)
	}
}
