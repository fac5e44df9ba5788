package bindz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFullHandling(t *testing.T) {
	reg := newTestRegistry(t, WithMode(DispatchPooled), WithWorkers(1), WithQueueSize(2))
	mgr := reg.EventManager("queue")

	release := make(chan struct{})
	_, err := mgr.Hook(testEventQuit, func(ctx context.Context, ev Event) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	queueFullErrors := 0
	for i := 0; i < 20; i++ {
		if err := mgr.Notify(context.Background(), SimpleEvent{Kind: testEventQuit}); err != nil {
			assert.ErrorIs(t, err, ErrQueueFull)
			queueFullErrors++
		}
	}
	close(release)

	assert.Greater(t, queueFullErrors, 0, "Should report queue full errors")
}

func TestResourceLimits(t *testing.T) {
	reg := newTestRegistry(t, WithLimits(3, 5))
	mgr := reg.EventManager("limits")
	noop := func(ctx context.Context, ev Event) error { return nil }

	for i := 0; i < 3; i++ {
		_, err := mgr.Hook(testEventQuit, noop)
		require.NoError(t, err)
	}
	_, err := mgr.Hook(testEventQuit, noop)
	assert.ErrorIs(t, err, ErrTooManyCallbacks, "per-key limit")

	for i := 0; i < 2; i++ {
		_, err := mgr.Hook(testEventResize, noop)
		require.NoError(t, err)
	}
	_, err = mgr.Hook(testEventMouse, noop)
	assert.ErrorIs(t, err, ErrTooManyCallbacks, "per-manager limit")

	keys := reg.KeyListener("limits")
	for i := 0; i < 3; i++ {
		_, err := keys.Hook("jump", On(' '), func(ctx context.Context, ev KeyEvent) error { return nil })
		require.NoError(t, err)
	}
	_, err = keys.Hook("jump", On(' '), func(ctx context.Context, ev KeyEvent) error { return nil })
	assert.ErrorIs(t, err, ErrTooManyCallbacks)
}

func TestRejectedBindLeavesNoTrace(t *testing.T) {
	reg := newTestRegistry(t, WithLimits(1, 1), WithMode(DispatchSequential))
	keys := reg.KeyListener("limits")
	noop := func(ctx context.Context, ev KeyEvent) error { return nil }

	_, err := keys.Hook("a", On('a'), noop)
	require.NoError(t, err)

	_, err = keys.Hook("b", On('x'), noop)
	assert.ErrorIs(t, err, ErrTooManyCallbacks)
	assert.Equal(t, []string{"a"}, keys.Binds(), "rejected call must not create the bind")
	_, ok := keys.Chord("b")
	assert.False(t, ok)

	// Once there is room, the next Bind sets its own default
	n, err := keys.ClearBind("a")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var fired int
	keys.Bind("b", On('y'))(func(ctx context.Context, ev KeyEvent) error {
		fired++
		return nil
	})
	c, ok := keys.Chord("b")
	require.True(t, ok)
	assert.Equal(t, On('y'), c)

	require.NoError(t, keys.Notify(context.Background(), KeyDown('x')))
	require.NoError(t, keys.Notify(context.Background(), KeyDown('y')))
	assert.Equal(t, 1, fired)
}

func TestRegisterFailureIsLoggedNotPanicked(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Close())

	cb := func(ctx context.Context, ev Event) error { return nil }
	assert.NotPanics(t, func() {
		got := reg.EventManager("closed").Register(testEventQuit)(cb)
		assert.NotNil(t, got)
	})
	assert.Equal(t, 0, reg.EventManager("closed").Count(testEventQuit))
}

func TestRegistryClosedErrors(t *testing.T) {
	reg := NewRegistry()
	mgr := reg.EventManager("closed")
	keys := reg.KeyListener("closed")

	mgr.Register(testEventQuit)(func(ctx context.Context, ev Event) error { return nil })
	keys.Bind("quit", On('q'))(func(ctx context.Context, ev KeyEvent) error { return nil })

	require.NoError(t, reg.Close())

	assert.ErrorIs(t, mgr.Notify(context.Background(), SimpleEvent{Kind: testEventQuit}), ErrRegistryClosed)
	assert.ErrorIs(t, keys.Notify(context.Background(), KeyDown('q')), ErrRegistryClosed)
	assert.ErrorIs(t, reg.NotifyEventManagers(context.Background(), SimpleEvent{Kind: testEventQuit}), ErrRegistryClosed)
	assert.ErrorIs(t, reg.Close(), ErrAlreadyClosed)

	// Empty matches stay silent even when closed
	assert.NoError(t, mgr.Notify(context.Background(), SimpleEvent{Kind: testEventMouse}))
}

func TestUnknownBindErrors(t *testing.T) {
	reg := newTestRegistry(t)
	keys := reg.KeyListener("errors")

	_, err := keys.Rebind("missing", On('x'))
	assert.ErrorIs(t, err, ErrUnknownBind)
	assert.Contains(t, err.Error(), "missing")

	_, err = keys.ClearBind("missing")
	assert.ErrorIs(t, err, ErrUnknownBind)

	assert.ErrorIs(t, keys.RemoveBind("missing"), ErrUnknownBind)
}

func TestCallbackErrorsNeverReachNotifier(t *testing.T) {
	reg := newTestRegistry(t, WithMode(DispatchSequential))
	mgr := reg.EventManager("errors")

	mgr.Register(testEventQuit)(func(ctx context.Context, ev Event) error {
		return errors.New("callback failed")
	})
	mgr.Register(testEventQuit)(func(ctx context.Context, ev Event) error {
		panic("callback panicked")
	})

	assert.NoError(t, mgr.Notify(context.Background(), SimpleEvent{Kind: testEventQuit}))

	m := reg.Metrics()
	assert.Equal(t, int64(2), m.TasksFailed)
	assert.Equal(t, int64(1), m.TasksPanicked)
}

func TestCallbackTimeout(t *testing.T) {
	reg := newTestRegistry(t, WithTimeout(20*time.Millisecond))
	mgr := reg.EventManager("timeout")

	done := make(chan error, 1)
	mgr.Register(testEventQuit)(func(ctx context.Context, ev Event) error {
		select {
		case <-ctx.Done():
			done <- ctx.Err()
			return ctx.Err()
		case <-time.After(time.Second):
			done <- nil
			return nil
		}
	})

	require.NoError(t, mgr.Notify(context.Background(), SimpleEvent{Kind: testEventQuit}))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("Callback did not finish")
	}

	reg.Wait()
	assert.Equal(t, int64(1), reg.Metrics().TasksExpired)
}
