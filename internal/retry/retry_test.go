// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps test runs short.
func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Factor:       2.0,
	}
}

func TestDefaultPolicyIsUsableValue(t *testing.T) {
	p := DefaultPolicy()
	// Callers copy and tweak the returned value (synthesis overrides
	// MaxRetries from config), so the defaults must come pre-filled.
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, 1*time.Second, p.InitialDelay)
	assert.Equal(t, 60*time.Second, p.MaxDelay)
	assert.Equal(t, 2.0, p.Factor)
	assert.True(t, p.Jitter)

	p.MaxRetries = 7
	assert.Equal(t, 3, DefaultPolicy().MaxRetries)
}

func TestDoImmediateSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), nil, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesThenSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(5), nil, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	sentinel := errors.New("still down")
	calls := 0
	err := Do(context.Background(), fastPolicy(2), nil, func() error {
		calls++
		return sentinel
	})
	require.Error(t, err)
	// The failure surfaces as-is, not wrapped.
	assert.Same(t, sentinel, err)
	assert.Equal(t, 3, calls) // first attempt + 2 retries
}

func TestDoNonRetryableFailsFast(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), fastPolicy(5), func(err error) bool {
		return !errors.Is(err, permanent)
	}, func() error {
		calls++
		return permanent
	})
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Factor: 2}

	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, p, nil, func() error { return errors.New("transient") })
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDelayBoundedAndGrowing(t *testing.T) {
	p := Policy{MaxRetries: 10, InitialDelay: 10 * time.Millisecond, MaxDelay: 80 * time.Millisecond, Factor: 2}
	assert.Equal(t, 10*time.Millisecond, p.Delay(0))
	assert.Equal(t, 20*time.Millisecond, p.Delay(1))
	assert.Equal(t, 40*time.Millisecond, p.Delay(2))
	assert.Equal(t, 80*time.Millisecond, p.Delay(3))
	// Capped beyond the max, including where the exponent would overflow.
	assert.Equal(t, 80*time.Millisecond, p.Delay(4))
	assert.Equal(t, 80*time.Millisecond, p.Delay(100))
}

func TestDelayJitterStaysInRange(t *testing.T) {
	p := Policy{MaxRetries: 3, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Factor: 2, Jitter: true}
	for i := 0; i < 50; i++ {
		d := p.Delay(0)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}
