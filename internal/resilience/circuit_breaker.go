package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Call when the breaker is rejecting requests
var ErrOpen = errors.New("circuit breaker is open")

// State represents the state of a circuit breaker
type State int

const (
	StateClosed   State = iota // normal operation
	StateOpen                  // requests fail immediately
	StateHalfOpen              // probing whether the service recovered
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

// Breaker implements the circuit breaker pattern. It guards the remote mood
// backend so a flapping service degrades to the safe default instead of
// being hammered on every prediction.
type Breaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	probeQuota   int // successful probes required to close from half-open

	now func() time.Time // injectable clock for tests

	mu           sync.Mutex
	state        State
	failures     int
	probeSuccess int
	lastFailure  time.Time
}

// NewBreaker creates a circuit breaker that opens after maxFailures
// consecutive failures and probes again after resetTimeout.
func NewBreaker(name string, maxFailures int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		probeQuota:   3,
		now:          time.Now,
		state:        StateClosed,
	}
}

// Call executes fn under breaker protection. When the breaker is open,
// ErrOpen is returned without invoking fn.
func (b *Breaker) Call(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn()
	b.Record(err == nil)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.lastFailure) >= b.resetTimeout {
			b.state = StateHalfOpen
			b.probeSuccess = 0
			return true
		}
		return false
	case StateHalfOpen:
		return true
	}
	return false
}

// Record feeds the outcome of an externally-executed request into the
// breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		switch b.state {
		case StateClosed:
			b.failures = 0
		case StateHalfOpen:
			b.probeSuccess++
			if b.probeSuccess >= b.probeQuota {
				b.state = StateClosed
				b.failures = 0
				b.probeSuccess = 0
			}
		}
		return
	}

	b.lastFailure = b.now()
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.maxFailures {
			b.state = StateOpen
		}
	case StateHalfOpen:
		// A failed probe reopens immediately.
		b.state = StateOpen
		b.probeSuccess = 0
	}
}

// State returns the breaker's current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the breaker's name (used as a metric label)
func (b *Breaker) Name() string {
	return b.name
}

// Reset forces the breaker back to closed
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.probeSuccess = 0
}
