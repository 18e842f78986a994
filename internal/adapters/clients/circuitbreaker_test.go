package clients

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a breaker's notion of now.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(maxFailures, halfOpenLimit int) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		Timeout:       100 * time.Millisecond,
		HalfOpenLimit: halfOpenLimit,
	})
	cb.now = clock.Now

	return cb, clock
}

// trip opens cb with consecutive failures.
func trip(cb *CircuitBreaker) {
	for range cb.cfg.MaxFailures {
		cb.RecordFailure()
	}
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb, _ := newTestBreaker(3, 1)

	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, 1)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_SuccessClearsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(3, 1)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Recovery(t *testing.T) {
	tests := []struct {
		name          string
		halfOpenLimit int
		probes        []bool // true is a successful probe
		wantState     State
	}{
		{
			name:          "one good probe closes",
			halfOpenLimit: 1,
			probes:        []bool{true},
			wantState:     StateClosed,
		},
		{
			name:          "needs every probe to succeed",
			halfOpenLimit: 2,
			probes:        []bool{true},
			wantState:     StateHalfOpen,
		},
		{
			name:          "two good probes close",
			halfOpenLimit: 2,
			probes:        []bool{true, true},
			wantState:     StateClosed,
		},
		{
			name:          "failed probe reopens",
			halfOpenLimit: 2,
			probes:        []bool{true, false},
			wantState:     StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock := newTestBreaker(2, tt.halfOpenLimit)
			trip(cb)

			assert.False(t, cb.Allow(), "open before the timeout")

			clock.Advance(150 * time.Millisecond)

			for _, ok := range tt.probes {
				require.True(t, cb.Allow())
				if ok {
					cb.RecordSuccess()
				} else {
					cb.RecordFailure()
				}
			}

			assert.Equal(t, tt.wantState, cb.State())
		})
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, clock := newTestBreaker(1, 2)
	trip(cb)
	clock.Advance(time.Second)

	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "limit reached while probes are in flight")

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State(), "closes only after the limit of successes")
	assert.True(t, cb.Allow(), "a finished probe frees its slot")

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	type transition struct{ from, to State }

	var (
		mu   sync.Mutex
		seen []transition
	)

	cb, clock := newTestBreaker(1, 1)
	cb.OnStateChange(func(from, to State) {
		mu.Lock()
		seen = append(seen, transition{from, to})
		mu.Unlock()
	})

	cb.RecordFailure()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 5*time.Millisecond)

	clock.Advance(time.Second)
	require.True(t, cb.Allow())
	cb.RecordSuccess()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.ElementsMatch(t, []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, seen)
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   100,
		Timeout:       time.Second,
		HalfOpenLimit: 10,
	})

	var allowed atomic.Int64

	var wg sync.WaitGroup
	for i := range 1000 {
		wg.Go(func() {
			if !cb.Allow() {
				return
			}

			allowed.Add(1)

			if i%2 == 0 {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		})
	}
	wg.Wait()

	assert.Positive(t, allowed.Load())
	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, cb.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
