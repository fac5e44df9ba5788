package bindz

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry maps handles to EventManagers and KeyListeners and owns the
// dispatcher they share.
//
// A handle always resolves to the same instance for the lifetime of the
// registry. Event managers and key listeners live in separate namespaces,
// so "ui" may name both an EventManager and an unrelated KeyListener.
//
// Thread Safety:
// Lookups, registration and notification may be called from any
// goroutine. Callbacks run concurrently with the caller unless the
// registry uses DispatchSequential.
type Registry struct {
	cfg      config
	log      zerolog.Logger
	dispatch *dispatcher

	mu            sync.RWMutex
	managers      map[string]*EventManager
	managerOrder  []*EventManager
	listeners     map[string]*KeyListener
	listenerOrder []*KeyListener
	closed        bool

	metrics Metrics
}

// NewRegistry creates an empty registry with the specified options.
//
// Default configuration:
//   - DispatchConcurrent: one goroutine per callback
//   - No callback timeout
//   - 100 callbacks per key, 10,000 per manager
//   - Logging disabled
//
// Example:
//
//	reg := bindz.NewRegistry(
//	    bindz.WithMode(bindz.DispatchPooled),
//	    bindz.WithWorkers(4),
//	    bindz.WithLogger(zerolog.New(os.Stderr)),
//	)
//	defer reg.Close()
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		cfg:       cfg,
		log:       cfg.logger,
		managers:  make(map[string]*EventManager),
		listeners: make(map[string]*KeyListener),
	}
	r.dispatch = newDispatcher(cfg, &r.metrics)

	r.log.Debug().
		Str("mode", cfg.mode.String()).
		Dur("timeout", cfg.timeout).
		Msg("registry created")
	return r
}

// EventManager returns the manager for handle, creating it on first use.
func (r *Registry) EventManager(handle string) *EventManager {
	r.mu.RLock()
	m, ok := r.managers[handle]
	r.mu.RUnlock()
	if ok {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have won the race between the locks.
	if m, ok := r.managers[handle]; ok {
		return m
	}
	m = newEventManager(handle, r)
	r.managers[handle] = m
	r.managerOrder = append(r.managerOrder, m)
	r.log.Debug().Str("handle", handle).Msg("event manager created")
	return m
}

// KeyListener returns the listener for handle, creating it on first use.
func (r *Registry) KeyListener(handle string) *KeyListener {
	r.mu.RLock()
	l, ok := r.listeners[handle]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.listeners[handle]; ok {
		return l
	}
	l = newKeyListener(handle, r)
	r.listeners[handle] = l
	r.listenerOrder = append(r.listenerOrder, l)
	r.log.Debug().Str("handle", handle).Msg("key listener created")
	return l
}

// EventManagers returns every manager in creation order.
func (r *Registry) EventManagers() []*EventManager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*EventManager, len(r.managerOrder))
	copy(out, r.managerOrder)
	return out
}

// KeyListeners returns every listener in creation order.
func (r *Registry) KeyListeners() []*KeyListener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*KeyListener, len(r.listenerOrder))
	copy(out, r.listenerOrder)
	return out
}

// NotifyEventManagers forwards ev to every manager that exists when the
// call starts. Managers created while it runs are not reached.
func (r *Registry) NotifyEventManagers(ctx context.Context, ev Event) error {
	var errs []error
	for _, m := range r.EventManagers() {
		if err := m.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyKeyListeners forwards ev to every listener that exists when the
// call starts.
func (r *Registry) NotifyKeyListeners(ctx context.Context, ev KeyEvent) error {
	var errs []error
	for _, l := range r.KeyListeners() {
		if err := l.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until every callback dispatched so far has returned.
// Notify never waits on its own; Wait is for shutdown paths and tests and
// must not be called from inside a callback.
func (r *Registry) Wait() {
	r.dispatch.wait()
}

// Metrics returns a snapshot of dispatcher and registration counters.
func (r *Registry) Metrics() Metrics {
	managers := r.EventManagers()
	listeners := r.KeyListeners()

	var callbacks, binds int64
	for _, m := range managers {
		callbacks += int64(m.total())
	}
	for _, l := range listeners {
		c, b := l.totals()
		callbacks += int64(c)
		binds += int64(b)
	}

	return Metrics{
		QueueDepth:          atomic.LoadInt64(&r.metrics.QueueDepth),
		QueueCapacity:       r.metrics.QueueCapacity,
		InFlight:            atomic.LoadInt64(&r.metrics.InFlight),
		TasksDispatched:     atomic.LoadInt64(&r.metrics.TasksDispatched),
		TasksProcessed:      atomic.LoadInt64(&r.metrics.TasksProcessed),
		TasksRejected:       atomic.LoadInt64(&r.metrics.TasksRejected),
		TasksFailed:         atomic.LoadInt64(&r.metrics.TasksFailed),
		TasksPanicked:       atomic.LoadInt64(&r.metrics.TasksPanicked),
		TasksExpired:        atomic.LoadInt64(&r.metrics.TasksExpired),
		EventManagers:       int64(len(managers)),
		KeyListeners:        int64(len(listeners)),
		RegisteredCallbacks: callbacks,
		RegisteredBinds:     binds,
		OverflowDepth:       atomic.LoadInt64(&r.metrics.OverflowDepth),
		OverflowCapacity:    r.metrics.OverflowCapacity,
		OverflowDrained:     atomic.LoadInt64(&r.metrics.OverflowDrained),
	}
}

// Close stops accepting notifications and waits for dispatched callbacks
// to finish. Managers and listeners stay resolvable but Notify and new
// registrations return ErrRegistryClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrAlreadyClosed
	}
	r.closed = true
	r.mu.Unlock()

	r.dispatch.close()
	r.log.Debug().Msg("registry closed")
	return nil
}

func (r *Registry) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// newID creates the identifier carried by a Hook.
func newID() string {
	return uuid.NewString()
}
