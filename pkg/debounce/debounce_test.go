package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerFiresAfterQuietPeriod(t *testing.T) {
	d := New(10 * time.Millisecond)

	done := make(chan struct{})
	d.Do(func(stale func() bool) {
		assert.False(t, stale())
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
}

func TestDebouncerLastWriterWins(t *testing.T) {
	d := New(20 * time.Millisecond)

	var mu sync.Mutex
	var fired []int

	for i := 0; i < 5; i++ {
		i := i
		d.Do(func(stale func() bool) {
			mu.Lock()
			fired = append(fired, i)
			mu.Unlock()
		})
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{4}, fired, "only the newest call should fire")
}

func TestDebouncerStaleInFlight(t *testing.T) {
	d := New(5 * time.Millisecond)

	started := make(chan struct{})
	verdict := make(chan bool)
	d.Do(func(stale func() bool) {
		close(started)
		// Simulate an in-flight request superseded before it completes.
		time.Sleep(30 * time.Millisecond)
		verdict <- stale()
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first call never started")
	}
	d.Do(func(stale func() bool) {})

	select {
	case isStale := <-verdict:
		assert.True(t, isStale, "superseded in-flight work must observe itself stale")
	case <-time.After(time.Second):
		t.Fatal("first call never finished")
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := New(10 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Do(func(stale func() bool) {
		fired <- struct{}{}
	})
	d.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled call fired")
	case <-time.After(50 * time.Millisecond):
	}
}
