package clients

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type CircuitBreakerConfig struct {
	MaxFailures   int
	Timeout       time.Duration
	HalfOpenLimit int
}

// CircuitBreaker fails calls to the characters backend fast once it has
// failed MaxFailures times in a row.
//
//	closed    --MaxFailures failures---> open
//	open      --Timeout elapsed--------> half-open
//	half-open --HalfOpenLimit successes-> closed
//	half-open --any failure------------> open
//
// Half-open admits at most HalfOpenLimit probes at a time.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     State
	openUntil time.Time
	// failures counts consecutive failures while closed; successes counts
	// good probes while half-open.
	failures  int
	successes int
	probes    int

	onStateChange func(from, to State)
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange sets a hook run in its own goroutine after each transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	cb.onStateChange = fn
	cb.mu.Unlock()
}

// Allow reports whether a call may go ahead. Each true from a half-open
// breaker takes a probe slot that RecordSuccess or RecordFailure returns.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Before(cb.openUntil) {
			return false
		}
		cb.transition(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}
		cb.probes++
	}

	return true
}

// RecordSuccess records a call the backend answered.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes--
		if cb.successes++; cb.successes >= cb.cfg.HalfOpenLimit {
			cb.transition(StateClosed)
		}
	}
}

// RecordFailure records a call that never reached the backend or still got
// a 5xx after its retries.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if cb.failures++; cb.failures >= cb.cfg.MaxFailures {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.probes--
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// transition resets the counters for the new state. cb.mu must be held.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}

	cb.state = to
	cb.failures, cb.successes = 0, 0

	switch to {
	case StateOpen:
		cb.openUntil = cb.now().Add(cb.cfg.Timeout)
	case StateHalfOpen, StateClosed:
		cb.probes = 0
	}

	if hook := cb.onStateChange; hook != nil {
		go hook(from, to)
	}
}
