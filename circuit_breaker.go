package toolguard

import "sync"

// BreakerState represents the state of the denial circuit breaker.
type BreakerState int

const (
	// BreakerClosed is normal operation: requests are evaluated.
	BreakerClosed BreakerState = iota
	// BreakerTripped forces auto-approval off until an explicit reset.
	BreakerTripped
)

// String returns the string representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerTripped:
		return "tripped"
	default:
		return "unknown"
	}
}

// CircuitBreaker disables auto-approval after repeated denials. Every
// denial increments the counter; reaching the threshold trips the
// breaker. Tripped is terminal until Reset: neither time nor a later
// approval restores trust, only an explicit reset does.
type CircuitBreaker struct {
	mu        sync.RWMutex
	denials   int
	threshold int
	tripped   bool
}

// NewCircuitBreaker creates a circuit breaker that trips after threshold
// denials. A threshold below one falls back to DefaultDenialThreshold.
func NewCircuitBreaker(threshold int) *CircuitBreaker {
	if threshold < 1 {
		threshold = DefaultDenialThreshold
	}
	return &CircuitBreaker{threshold: threshold}
}

// RecordDenial increments the denial counter and reports whether this
// particular denial tripped the breaker. Denials recorded while already
// tripped still increment the counter but report false.
func (cb *CircuitBreaker) RecordDenial() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.denials++
	if !cb.tripped && cb.denials >= cb.threshold {
		cb.tripped = true
		return true
	}
	return false
}

// Tripped reports whether auto-approval is currently forced off.
func (cb *CircuitBreaker) Tripped() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.tripped
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	if cb.tripped {
		return BreakerTripped
	}
	return BreakerClosed
}

// Denials returns the current denial count.
func (cb *CircuitBreaker) Denials() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.denials
}

// Reset restores the breaker to the closed state and clears the counter.
// This is the only path out of the tripped state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.denials = 0
	cb.tripped = false
}
