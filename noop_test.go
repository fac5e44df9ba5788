package bindz

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNoopBehaviorWithoutCallbacks verifies a registry has minimal footprint
// when nothing is registered.
func TestNoopBehaviorWithoutCallbacks(t *testing.T) {
	t.Run("NoWorkersOutsidePooledMode", func(t *testing.T) {
		reg := newTestRegistry(t)

		assert.Nil(t, reg.dispatch.tasks, "worker queue should not exist in concurrent mode")
		assert.Nil(t, reg.dispatch.overflow, "overflow ring should not exist without configuration")
	})

	t.Run("NotifyIsNoop", func(t *testing.T) {
		reg := newTestRegistry(t)
		mgr := reg.EventManager("noop")
		keys := reg.KeyListener("noop")

		initialGoroutines := runtime.NumGoroutine()

		for i := 0; i < 100; i++ {
			require.NoError(t, mgr.Notify(context.Background(), SimpleEvent{Kind: testEventQuit}))
			require.NoError(t, keys.Notify(context.Background(), KeyDown('x')))
		}

		time.Sleep(10 * time.Millisecond)

		assert.LessOrEqual(t, runtime.NumGoroutine(), initialGoroutines, "Notify created goroutines")
		assert.Equal(t, int64(0), reg.Metrics().TasksDispatched)
	})

	t.Run("BindWithoutCallbacksNeverDispatches", func(t *testing.T) {
		reg := newTestRegistry(t)
		keys := reg.KeyListener("noop")
		keys.ApplyKeymap(Keymap{"jump": On(' ')})

		require.NoError(t, keys.Notify(context.Background(), KeyDown(' ')))
		assert.Equal(t, int64(0), reg.Metrics().TasksDispatched)
	})
}
