package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitOpenError is returned while a peer's breaker rejects calls.
type CircuitOpenError struct {
	Name       string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v: retry in %s", ErrCircuitOpen, e.RetryAfter)
	}
	return fmt.Sprintf("%v for %s: retry in %s", ErrCircuitOpen, e.Name, e.RetryAfter)
}

func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

type CircuitBreakerState string

const (
	CircuitClosed   CircuitBreakerState = "closed"
	CircuitOpen     CircuitBreakerState = "open"
	CircuitHalfOpen CircuitBreakerState = "half_open"
)

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	OpenTimeout      time.Duration
	// OnStateChange is called outside the breaker lock after every transition.
	OnStateChange func(name string, from, to CircuitBreakerState)
	// IsFailure decides which errors count against the peer. Defaults to any non-cancel error.
	IsFailure func(error) bool
}

// CircuitBreaker stops calling a peer after consecutive failures and lets a single probe
// through once OpenTimeout has elapsed.
type CircuitBreaker struct {
	mu sync.Mutex

	cfg CircuitBreakerConfig

	state     CircuitBreakerState
	failures  int
	openUntil time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}
	}
	return &CircuitBreaker{cfg: cfg, state: CircuitClosed}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && !time.Now().Before(cb.openUntil) {
		return CircuitHalfOpen
	}
	return cb.state
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.acquire(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.release(err)
	return err
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()

	now := time.Now()
	from := cb.state
	if cb.state == CircuitOpen && !now.Before(cb.openUntil) {
		cb.state = CircuitHalfOpen
		cb.probing = false
	}

	var err error
	switch cb.state {
	case CircuitOpen:
		err = cb.openErrLocked(now)
	case CircuitHalfOpen:
		if cb.probing {
			err = cb.openErrLocked(now)
		} else {
			cb.probing = true
		}
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
	return err
}

func (cb *CircuitBreaker) release(err error) {
	cb.mu.Lock()
	from := cb.state
	failed := cb.cfg.IsFailure(err)

	switch {
	case cb.state == CircuitHalfOpen && failed:
		cb.tripLocked()
	case cb.state == CircuitHalfOpen && err == nil:
		cb.state = CircuitClosed
		cb.failures = 0
		cb.probing = false
	case cb.state == CircuitHalfOpen:
		// Cancelled probe: let the next caller try again.
		cb.probing = false
	case failed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.tripLocked()
		}
	case err == nil:
		cb.failures = 0
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

func (cb *CircuitBreaker) tripLocked() {
	cb.state = CircuitOpen
	cb.openUntil = time.Now().Add(cb.cfg.OpenTimeout)
	cb.failures = 0
	cb.probing = false
}

func (cb *CircuitBreaker) openErrLocked(now time.Time) error {
	remaining := cb.openUntil.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return &CircuitOpenError{Name: cb.cfg.Name, RetryAfter: remaining}
}

func (cb *CircuitBreaker) notify(from, to CircuitBreakerState) {
	if from != to && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}
