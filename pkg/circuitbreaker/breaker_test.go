package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Second,
		now:              clock.now,
	})
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	ctx := context.Background()
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Execute(ctx, func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(ctx, func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	ctx := context.Background()
	boom := errors.New("boom")

	_ = cb.Execute(ctx, func() error { return boom })
	_ = cb.Execute(ctx, func() error { return boom })
	assert.Equal(t, StateOpen, cb.State())

	clock.t = clock.t.Add(2 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	ctx := context.Background()
	boom := errors.New("boom")

	_ = cb.Execute(ctx, func() error { return boom })
	_ = cb.Execute(ctx, func() error { return boom })
	clock.t = clock.t.Add(2 * time.Second)

	_ = cb.Execute(ctx, func() error { return boom })
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func() error { return ctx.Err() })
	}
	assert.Equal(t, StateClosed, cb.State())
}
