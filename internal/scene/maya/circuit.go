package maya

import (
	"sync"
	"time"
)

// The host is a GUI application: when it stops answering it usually stays
// that way until an artist intervenes, so after a few consecutive transport
// failures the session stops hammering the socket and fails fast until a
// probe succeeds again.

type circuitState string

const (
	circuitClosed   circuitState = "closed"
	circuitOpen     circuitState = "open"
	circuitHalfOpen circuitState = "half-open"
)

type breakerConfig struct {
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	halfOpenMaxCalls int
}

func defaultBreakerConfig() breakerConfig {
	return breakerConfig{
		failureThreshold: 3,
		successThreshold: 2,
		openTimeout:      10 * time.Second,
		halfOpenMaxCalls: 1,
	}
}

type breaker struct {
	mu sync.Mutex

	config        breakerConfig
	state         circuitState
	failures      int
	successes     int
	lastFailure   time.Time
	halfOpenCalls int
}

func newBreaker(config breakerConfig) *breaker {
	return &breaker{config: config, state: circuitClosed}
}

// allow reports whether a request may go out. While open, one probe is let
// through after the cool-off.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if time.Since(b.lastFailure) < b.config.openTimeout {
			return false
		}
		b.state = circuitHalfOpen
		b.halfOpenCalls = 0
		b.successes = 0
		return b.allowProbe()
	case circuitHalfOpen:
		return b.allowProbe()
	}
	return false
}

func (b *breaker) allowProbe() bool {
	if b.halfOpenCalls >= b.config.halfOpenMaxCalls {
		return false
	}
	b.halfOpenCalls++
	return true
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed:
		b.failures = 0
	case circuitHalfOpen:
		b.successes++
		b.halfOpenCalls--
		if b.successes >= b.config.successThreshold {
			b.state = circuitClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()
	switch b.state {
	case circuitClosed:
		b.failures++
		if b.failures >= b.config.failureThreshold {
			b.state = circuitOpen
		}
	case circuitHalfOpen:
		b.state = circuitOpen
		b.halfOpenCalls = 0
		b.successes = 0
	}
}

func (b *breaker) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = circuitClosed
	b.failures = 0
	b.successes = 0
	b.halfOpenCalls = 0
}

// CircuitStats is the breaker snapshot reported by session stats.
type CircuitStats struct {
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	LastFailure time.Time `json:"last_failure,omitempty"`
}

func (b *breaker) stats() CircuitStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return CircuitStats{
		State:       string(b.state),
		Failures:    b.failures,
		LastFailure: b.lastFailure,
	}
}
