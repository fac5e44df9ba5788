package bindz

import (
	"context"
	"strconv"
	"sync"
)

// EventManager routes events to callbacks registered by category.
//
// Obtain one through Registry.EventManager or GetEventManager; every
// caller using the same handle shares the instance.
type EventManager struct {
	handle string
	reg    *Registry

	mu        sync.RWMutex
	callbacks map[EventType][]callbackEntry
	count     int
}

type callbackEntry struct {
	id string
	fn Callback
}

func newEventManager(handle string, reg *Registry) *EventManager {
	return &EventManager{
		handle:    handle,
		reg:       reg,
		callbacks: make(map[EventType][]callbackEntry),
	}
}

// Handle returns the handle the manager was created under.
func (m *EventManager) Handle() string {
	return m.handle
}

// Register returns a binder that stores a callback under t.
//
//	cb := mgr.Register(EventQuit)(func(ctx context.Context, ev bindz.Event) error {
//	    return save()
//	})
//
// The binder returns the callback unchanged, so the same function can be
// bound to several categories. A registration that fails (closed
// registry, limits) is logged and the callback is still returned.
func (m *EventManager) Register(t EventType) Binder {
	return func(cb Callback) Callback {
		if _, err := m.Hook(t, cb); err != nil {
			m.reg.log.Error().
				Err(err).
				Str("handle", m.handle).
				Uint32("event", uint32(t)).
				Msg("register failed")
		}
		return cb
	}
}

// Hook stores cb under t and returns a handle that removes exactly this
// registration.
func (m *EventManager) Hook(t EventType, cb Callback) (Hook, error) {
	if m.reg.isClosed() {
		return Hook{}, ErrRegistryClosed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.callbacks[t]) >= m.reg.cfg.maxPerKey || m.count >= m.reg.cfg.maxTotal {
		return Hook{}, ErrTooManyCallbacks
	}

	id := newID()
	m.callbacks[t] = append(m.callbacks[t], callbackEntry{id: id, fn: cb})
	m.count++

	return Hook{
		id: id,
		unhook: func() error {
			return m.remove(t, id)
		},
	}, nil
}

func (m *EventManager) remove(t EventType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.callbacks[t]
	for i, e := range entries {
		if e.id != id {
			continue
		}
		// Copy so snapshots taken by in-progress Notify calls stay intact.
		next := make([]callbackEntry, 0, len(entries)-1)
		next = append(next, entries[:i]...)
		next = append(next, entries[i+1:]...)
		if len(next) == 0 {
			delete(m.callbacks, t)
		} else {
			m.callbacks[t] = next
		}
		m.count--
		return nil
	}
	return ErrHookNotFound
}

// Purge removes every callback registered under t and returns how many
// were removed.
func (m *EventManager) Purge(t EventType) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.callbacks[t])
	if n == 0 {
		m.reg.log.Warn().
			Str("handle", m.handle).
			Uint32("event", uint32(t)).
			Msg("purge on event with no callbacks")
		return 0
	}
	delete(m.callbacks, t)
	m.count -= n
	return n
}

// PurgeAll removes every callback from the manager.
func (m *EventManager) PurgeAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.count
	m.callbacks = make(map[EventType][]callbackEntry)
	m.count = 0
	return n
}

// Count returns how many callbacks are registered under t.
func (m *EventManager) Count(t EventType) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.callbacks[t])
}

func (m *EventManager) total() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Notify dispatches ev to every callback registered under ev.Type(), in
// registration order, and returns without waiting for them. An event
// with no callbacks is a no-op. The returned error only reports dispatch
// problems (closed registry, full queue); callback failures are logged.
func (m *EventManager) Notify(ctx context.Context, ev Event) error {
	if ev == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	t := ev.Type()

	// Snapshot under the read lock; dispatch happens outside it.
	m.mu.RLock()
	entries := m.callbacks[t]
	m.mu.RUnlock()

	if len(entries) == 0 {
		return nil
	}

	target := strconv.FormatUint(uint64(t), 10)
	var first error
	for _, e := range entries {
		fn := e.fn
		err := m.reg.dispatch.submit(task{
			ctx:    ctx,
			handle: m.handle,
			target: target,
			call: func(ctx context.Context) error {
				return fn(ctx, ev)
			},
		})
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
