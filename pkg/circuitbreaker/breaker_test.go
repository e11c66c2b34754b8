package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerTripsAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(true, 3, time.Minute, time.Minute, nil)

	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())

	assert.True(t, cb.RecordFailure())
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker(false, 1, time.Minute, time.Minute, nil)

	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())
	assert.False(t, cb.IsEnabled())
}

func TestCircuitBreakerResetTimeout(t *testing.T) {
	cb := NewCircuitBreaker(true, 1, time.Minute, 10*time.Millisecond, nil)

	assert.True(t, cb.RecordFailure())
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreakerManualReset(t *testing.T) {
	cb := NewCircuitBreaker(true, 1, time.Minute, time.Hour, nil)

	assert.True(t, cb.RecordFailure())
	assert.True(t, cb.IsOpen())

	cb.Reset()
	assert.False(t, cb.IsOpen())

	count, _, _, threshold := cb.GetState()
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, threshold)
}

func TestCircuitBreakerWindowExpiry(t *testing.T) {
	cb := NewCircuitBreaker(true, 2, 10*time.Millisecond, time.Minute, nil)

	assert.False(t, cb.RecordFailure())
	time.Sleep(20 * time.Millisecond)

	// The earlier failure fell out of the window, so this one starts over.
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())
}
