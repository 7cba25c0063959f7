/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package breaker implements a three-state (closed/open/half-open)
// circuit breaker guarding outbound dependencies (spec.md §4.7),
// grounded line-for-line on original_source's breaker.rs state machine.
package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/cenkalti/backoff/v4"
)

// State is one of Closed, Open, HalfOpen.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BackoffKind selects the inter-retry delay strategy.
type BackoffKind int

const (
	BackoffNone BackoffKind = iota
	BackoffConstant
	BackoffExponential
)

// Config parameterizes a Breaker. Zero values match the spec's
// defaults: MaxRetries 0 (opens on first failure), HalfOpenMaxFailures
// 1, ResetTimeout defaulted in New when unset.
type Config struct {
	MaxRetries          int
	HalfOpenMaxFailures int
	ResetTimeout        time.Duration
	Backoff             BackoffKind
	BackoffDelay        time.Duration // constant delay, or exponential's initial delay
}

// DefaultConfig returns spec.md §4.7's stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:          0,
		HalfOpenMaxFailures: 1,
		ResetTimeout:        30 * time.Second,
		Backoff:             BackoffNone,
	}
}

// Breaker guards a factory of fallible calls with the closed/open/half-open
// state machine of spec.md §4.7. The zero value is not usable; construct
// with New.
type Breaker struct {
	cfg Config

	mu               sync.Mutex
	state            State
	failureCount     int
	halfOpenFailures int
	openedAt         time.Time
	expBackoff       *backoff.ExponentialBackOff

	now func() time.Time
}

// New builds a Breaker in the Closed state. A zero ResetTimeout and zero
// HalfOpenMaxFailures are replaced with DefaultConfig's values, so
// callers can supply a partially zero Config.
func New(cfg Config) *Breaker {
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultConfig().ResetTimeout
	}

	if cfg.HalfOpenMaxFailures <= 0 {
		cfg.HalfOpenMaxFailures = DefaultConfig().HalfOpenMaxFailures
	}

	return &Breaker{cfg: cfg, state: Closed, now: time.Now}
}

// State reports the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Call runs factory under the breaker's guard, retrying from Closed per
// the backoff strategy until max_retries is exceeded, and short-circuits
// immediately with errorx.ErrCircuitOpen while Open and the reset
// timeout has not elapsed (spec.md §4.7).
func (b *Breaker) Call(ctx context.Context, factory func(ctx context.Context) error) error {
	for {
		action, err := b.before()
		if err != nil {
			return err
		}

		if action == actionDelayThenRetry {
			if err := sleepCtx(ctx, b.backoffDelay()); err != nil {
				return err
			}
		}

		callErr := factory(ctx)

		done, retry := b.after(callErr)
		if done {
			return callErr
		}

		if !retry {
			return callErr
		}
	}
}

type gateAction int

const (
	actionRunNow gateAction = iota
	actionDelayThenRetry
)

// before evaluates the breaker's gate before running factory, performing
// the Open -> HalfOpen transition when the reset timeout has elapsed.
func (b *Breaker) before() (gateAction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
			b.state = HalfOpen
			b.failureCount = 0
			b.halfOpenFailures = 0
			b.expBackoff = nil

			return actionRunNow, nil
		}

		return actionRunNow, errorx.ErrCircuitOpen

	case HalfOpen:
		return actionRunNow, nil

	default: // Closed
		if b.failureCount == 0 {
			return actionRunNow, nil
		}

		return actionDelayThenRetry, nil
	}
}

// after records the outcome of a guarded call and reports whether Call
// should return (done) and, if not done, whether it should retry.
func (b *Breaker) after(callErr error) (done, retry bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		if callErr == nil {
			b.state = Closed
			b.failureCount = 0
			b.halfOpenFailures = 0
			b.openedAt = time.Time{}
			b.expBackoff = nil

			return true, false
		}

		b.halfOpenFailures++
		if b.halfOpenFailures >= b.cfg.HalfOpenMaxFailures {
			b.state = Open
			b.openedAt = b.now()
		}

		return true, false

	default: // Closed
		if callErr == nil {
			b.failureCount = 0
			b.expBackoff = nil

			return true, false
		}

		b.failureCount++
		if b.failureCount > b.cfg.MaxRetries {
			b.state = Open
			b.openedAt = b.now()

			return true, false
		}

		return false, true
	}
}

// backoffDelay computes the inter-retry delay per the configured
// strategy, using cenkalti/backoff's ExponentialBackOff to generate the
// initial·2^(n-1) progression (spec.md §4.7): each call advances the
// generator by one step, which lines up with backoffDelay being called
// exactly once per retry. NextBackOff saturates at backoff.Stop only
// after MaxElapsedTime, which we leave disabled (zero), so delay growth
// is unbounded by elapsed time and instead capped by MaxInterval.
func (b *Breaker) backoffDelay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.cfg.Backoff {
	case BackoffConstant:
		return backoff.NewConstantBackOff(b.cfg.BackoffDelay).NextBackOff()
	case BackoffExponential:
		if b.expBackoff == nil {
			b.expBackoff = newExponentialBackoff(b.cfg.BackoffDelay)
		}

		d := b.expBackoff.NextBackOff()
		if d == backoff.Stop {
			return b.expBackoff.MaxInterval
		}

		return d
	default:
		return 0
	}
}

// newExponentialBackoff builds a deterministic doubling backoff (no
// jitter) seeded at initial, saturating at the maximum representable
// duration.
func newExponentialBackoff(initial time.Duration) *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = initial
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxInterval = time.Duration(1<<63 - 1)
	eb.MaxElapsedTime = 0
	eb.Reset()

	return eb
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
