// Package quota tracks provider quota exhaustion so callers can short-circuit
// to fallbacks instead of burning calls that are certain to fail.
package quota

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

// DefaultCooldown matches the provider's observed quota reset window.
const DefaultCooldown = time.Hour

// Breaker is a process-local circuit breaker around the external generation
// provider. Construct one at startup and pass it to every caller; the state
// is not shared across running instances.
type Breaker struct {
	mu       sync.Mutex
	state    state
	openedAt time.Time
	cooldown time.Duration
	probing  bool
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// WithCooldown overrides the open-state cooldown.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func NewBreaker(logger zerolog.Logger, opts ...Option) *Breaker {
	b := &Breaker{
		cooldown: DefaultCooldown,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsOpen reports whether calls should short-circuit to the fallback path.
// When the cooldown has elapsed it hands out exactly one probe slot: the
// first caller after expiry sees false and must report the outcome through
// RecordSuccess or RecordQuotaExhausted; everyone else keeps seeing true
// until the probe resolves.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return false
	case stateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return true
		}
		b.state = stateHalfOpen
		b.probing = true
		b.logger.Info().Msg("quota: cooldown elapsed, allowing one probe call")
		return false
	default: // half-open
		if b.probing {
			return true
		}
		b.probing = true
		return false
	}
}

// RecordQuotaExhausted opens the breaker. Repeated exhaustion signals reset
// the window so a storm of them keeps the breaker open.
func (b *Breaker) RecordQuotaExhausted() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.openedAt = b.now()
	b.probing = false
	if b.state != stateOpen {
		b.logger.Warn().
			Dur("cooldown", b.cooldown).
			Msg("quota: provider quota exhausted, opening breaker")
	}
	b.state = stateOpen
}

// RecordFailure notes that a call failed for a reason other than quota
// exhaustion. It releases the half-open probe slot so the next caller can
// probe again; closed and open states are unaffected.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen {
		b.probing = false
	}
}

// RecordSuccess closes the breaker after a successful half-open probe. It is
// a no-op while closed, and ignored while fully open (a stale success from a
// call that started before the breaker opened must not close it).
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen {
		b.state = stateClosed
		b.probing = false
		b.logger.Info().Msg("quota: probe succeeded, closing breaker")
	}
}
