package bindz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

// dispatcher executes callbacks on behalf of every manager and listener
// of a Registry.
//
// The dispatcher:
//   - Never waits for callbacks, so the host loop is never stalled
//   - Recovers panics so one callback cannot take down its siblings
//   - Applies the registry timeout to every callback context
//   - Tracks in-flight callbacks for Wait and Close
type dispatcher struct {
	clock clockz.Clock
	log   zerolog.Logger
	mode  DispatchMode

	// Pooled mode only
	tasks    chan task
	overflow *overflowRing
	workers  sync.WaitGroup

	// Every accepted callback until it returns or is discarded
	inflight sync.WaitGroup

	mu      sync.RWMutex
	timeout time.Duration
	closed  bool

	metrics *Metrics
}

// task is one callback bound to one event.
type task struct {
	ctx    context.Context
	handle string // owning manager or listener
	target string // event type or bind name
	call   func(ctx context.Context) error
}

func newDispatcher(cfg config, metrics *Metrics) *dispatcher {
	d := &dispatcher{
		clock:   cfg.clock,
		log:     cfg.logger,
		mode:    cfg.mode,
		timeout: cfg.timeout,
		metrics: metrics,
	}

	if d.mode != DispatchPooled {
		return d
	}

	workers := cfg.workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.queueSize
	if queueSize <= 0 {
		queueSize = workers * 2
	}
	d.tasks = make(chan task, queueSize)
	metrics.QueueCapacity = int64(queueSize)

	if cfg.overflow != nil {
		d.overflow = newOverflowRing(*cfg.overflow, d)
		metrics.OverflowCapacity = int64(cfg.overflow.Capacity)
	}

	for i := 0; i < workers; i++ {
		d.workers.Add(1)
		go d.worker()
	}
	return d
}

// submit hands one callback to the dispatcher. It never waits for the
// callback to finish; in sequential mode it runs it before returning.
func (d *dispatcher) submit(t task) error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrRegistryClosed
	}
	atomic.AddInt64(&d.metrics.TasksDispatched, 1)

	switch d.mode {
	case DispatchPooled:
		// Channel send stays under the read lock so close() cannot close
		// the channel between the closed check and the send.
		err := d.enqueue(t)
		d.mu.RUnlock()
		return err
	case DispatchSequential:
		d.inflight.Add(1)
		d.mu.RUnlock()
		d.run(t)
		return nil
	default:
		d.inflight.Add(1)
		d.mu.RUnlock()
		go d.run(t)
		return nil
	}
}

func (d *dispatcher) enqueue(t task) error {
	d.inflight.Add(1)
	select {
	case d.tasks <- t:
		atomic.AddInt64(&d.metrics.QueueDepth, 1)
		return nil
	default:
	}

	if d.overflow != nil {
		if err := d.overflow.enqueue(t); err == nil {
			return nil
		}
	}

	d.inflight.Done()
	atomic.AddInt64(&d.metrics.TasksRejected, 1)
	d.log.Warn().
		Str("handle", t.handle).
		Str("target", t.target).
		Msg("dispatch queue full, callback rejected")
	return ErrQueueFull
}

// discard drops an accepted callback that will never run.
func (d *dispatcher) discard(t task, reason string) {
	atomic.AddInt64(&d.metrics.TasksRejected, 1)
	d.log.Debug().
		Str("handle", t.handle).
		Str("target", t.target).
		Str("reason", reason).
		Msg("callback discarded")
	d.inflight.Done()
}

func (d *dispatcher) worker() {
	defer d.workers.Done()

	for t := range d.tasks {
		atomic.AddInt64(&d.metrics.QueueDepth, -1)
		d.run(t)
	}
}

// run executes one callback and records its outcome.
func (d *dispatcher) run(t task) {
	defer d.inflight.Done()

	atomic.AddInt64(&d.metrics.InFlight, 1)
	defer atomic.AddInt64(&d.metrics.InFlight, -1)

	err := d.executeSafely(t)
	switch {
	case err == nil:
		atomic.AddInt64(&d.metrics.TasksProcessed, 1)
	case t.ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		atomic.AddInt64(&d.metrics.TasksExpired, 1)
		d.log.Debug().
			Err(err).
			Str("handle", t.handle).
			Str("target", t.target).
			Msg("callback context ended")
	default:
		atomic.AddInt64(&d.metrics.TasksFailed, 1)
		if errors.Is(err, ErrCallbackPanicked) {
			atomic.AddInt64(&d.metrics.TasksPanicked, 1)
		}
		d.log.Warn().
			Err(err).
			Str("handle", t.handle).
			Str("target", t.target).
			Msg("callback failed")
	}
}

// executeSafely runs a callback with panic recovery.
func (d *dispatcher) executeSafely(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanicked, r)
		}
	}()

	ctx := t.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = d.clock.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	return t.call(ctx)
}

// wait blocks until every accepted callback has returned or been
// discarded.
func (d *dispatcher) wait() {
	d.inflight.Wait()
}

// close refuses new callbacks, drains the pool and waits for in-flight
// callbacks.
func (d *dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	if d.overflow != nil {
		d.overflow.stop()
	}
	if d.tasks != nil {
		close(d.tasks)
		d.workers.Wait()
	}
	d.inflight.Wait()
}

// overflowRing buffers pooled callbacks that did not fit in the worker
// queue and moves them back as capacity becomes available.
type overflowRing struct {
	d         *dispatcher
	items     *queue.Queue
	capacity  int
	strategy  string
	mu        sync.Mutex
	drainStop chan struct{}
	drainWG   sync.WaitGroup
}

func newOverflowRing(cfg OverflowConfig, d *dispatcher) *overflowRing {
	r := &overflowRing{
		d:         d,
		items:     queue.New(),
		capacity:  cfg.Capacity,
		strategy:  cfg.EvictionStrategy,
		drainStop: make(chan struct{}),
	}

	interval := cfg.DrainInterval
	if interval <= 0 {
		interval = time.Millisecond
	}

	r.drainWG.Add(1)
	go r.drainLoop(interval)
	return r
}

// enqueue buffers a task, applying the eviction strategy when full.
func (r *overflowRing) enqueue(t task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity <= 0 {
		return ErrQueueFull
	}

	if r.items.Length() >= r.capacity {
		switch r.strategy {
		case "fifo":
			oldest := r.items.Remove().(task)
			r.d.discard(oldest, "evicted")
			r.items.Add(t)
			return nil
		case "lifo":
			// Newest loses: the incoming task is accepted and dropped.
			r.d.discard(t, "evicted")
			return nil
		default:
			return ErrQueueFull
		}
	}

	r.items.Add(t)
	atomic.AddInt64(&r.d.metrics.OverflowDepth, 1)
	return nil
}

func (r *overflowRing) drainLoop(interval time.Duration) {
	defer r.drainWG.Done()

	ticker := r.d.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			r.drain(false)
		case <-r.drainStop:
			r.drain(true)
			return
		}
	}
}

// drain moves buffered tasks into the worker queue until it is full.
// On shutdown it blocks until every buffered task has been handed over.
func (r *overflowRing) drain(final bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.items.Length() > 0 {
		t := r.items.Peek().(task)
		if t.ctx.Err() != nil {
			r.items.Remove()
			atomic.AddInt64(&r.d.metrics.OverflowDepth, -1)
			atomic.AddInt64(&r.d.metrics.TasksExpired, 1)
			r.d.inflight.Done()
			continue
		}

		if final {
			r.d.tasks <- t
		} else {
			select {
			case r.d.tasks <- t:
			default:
				return
			}
		}

		r.items.Remove()
		atomic.AddInt64(&r.d.metrics.OverflowDepth, -1)
		atomic.AddInt64(&r.d.metrics.OverflowDrained, 1)
		atomic.AddInt64(&r.d.metrics.QueueDepth, 1)
	}
}

func (r *overflowRing) stop() {
	close(r.drainStop)
	r.drainWG.Wait()
}
