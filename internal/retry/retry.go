// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry wraps fallible operations with bounded exponential
// backoff. It is used by external collaborators (search clients, the
// synthesis API); the core state machine and matcher never retry.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy bounds the retry behavior.
type Policy struct {
	// MaxRetries is the number of attempts after the first (default 3).
	MaxRetries int

	// InitialDelay is the delay before the first retry (default 1s).
	InitialDelay time.Duration

	// MaxDelay caps the backoff (default 60s).
	MaxDelay time.Duration

	// Factor is the backoff multiplier per attempt (default 2).
	Factor float64

	// Jitter randomizes each delay between 50% and 150% of its nominal
	// value to avoid thundering herds.
	Jitter bool
}

// DefaultPolicy returns the policy used by the pipeline's collaborators.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Factor:       2.0,
		Jitter:       true,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 1 * time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 60 * time.Second
	}
	if p.Factor <= 1 {
		p.Factor = 2.0
	}
	return p
}

// Delay returns the backoff before retry number attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	d := time.Duration(float64(p.InitialDelay) * math.Pow(p.Factor, float64(attempt)))
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	if p.Jitter {
		d = time.Duration(float64(d) * (0.5 + rand.Float64()))
	}
	return d
}

// Do runs op, retrying on failures for which retryable returns true. A
// nil retryable retries every failure. After exhausting the attempt
// budget (or hitting a non-retryable failure) the last error is returned
// unchanged, so callers can still match it with errors.Is/errors.As.
// Context cancellation during a backoff wait returns ctx.Err().
func Do(ctx context.Context, p Policy, retryable func(error) bool, op func() error) error {
	p = p.withDefaults()

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt >= p.MaxRetries {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}
}
