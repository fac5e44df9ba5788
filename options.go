package bindz

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

// DispatchMode selects how callbacks are executed.
type DispatchMode int

const (
	// DispatchConcurrent launches one goroutine per matching callback and
	// returns immediately.
	DispatchConcurrent DispatchMode = iota

	// DispatchPooled submits callbacks to a fixed pool of workers. A full
	// queue spills into the overflow ring when configured, otherwise the
	// callback is rejected with ErrQueueFull.
	DispatchPooled

	// DispatchSequential runs callbacks on the notifying goroutine, one
	// after another. Failures are still isolated per callback.
	DispatchSequential
)

func (m DispatchMode) String() string {
	switch m {
	case DispatchConcurrent:
		return "concurrent"
	case DispatchPooled:
		return "pooled"
	case DispatchSequential:
		return "sequential"
	default:
		return "unknown"
	}
}

// Option configures a Registry during creation.
type Option func(*config)

type config struct {
	clock     clockz.Clock
	logger    zerolog.Logger
	mode      DispatchMode
	workers   int
	queueSize int
	timeout   time.Duration
	overflow  *OverflowConfig
	maxPerKey int
	maxTotal  int
}

// Default limits. They cap how many callbacks one key or one manager can
// accumulate.
const (
	defaultMaxPerKey = 100
	defaultMaxTotal  = 10000
)

func defaultConfig() config {
	return config{
		clock:     clockz.RealClock,
		logger:    zerolog.Nop(),
		mode:      DispatchConcurrent,
		workers:   10,
		maxPerKey: defaultMaxPerKey,
		maxTotal:  defaultMaxTotal,
	}
}

// WithMode selects the dispatch mode. Default is DispatchConcurrent.
func WithMode(mode DispatchMode) Option {
	return func(c *config) {
		c.mode = mode
	}
}

// WithWorkers sets the number of workers in pooled mode.
// Default is 10 workers.
func WithWorkers(count int) Option {
	return func(c *config) {
		c.workers = count
	}
}

// WithQueueSize sets the pooled mode queue size.
// Default is 0, which auto-calculates as workers * 2.
func WithQueueSize(size int) Option {
	return func(c *config) {
		c.queueSize = size
	}
}

// WithTimeout bounds the context of every callback execution.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithClock sets the clock used for timeouts and the overflow drain loop.
// Default is clockz.RealClock.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger installs a structured logger. Default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLimits overrides the per-key and per-manager callback limits.
// Non-positive values keep the default.
func WithLimits(perKey, total int) Option {
	return func(c *config) {
		if perKey > 0 {
			c.maxPerKey = perKey
		}
		if total > 0 {
			c.maxTotal = total
		}
	}
}

// OverflowConfig configures the pooled mode overflow ring. Callbacks that
// do not fit in the worker queue are buffered there and drained back as
// workers free up, so bursts from the host loop are absorbed without
// blocking it.
type OverflowConfig struct {
	// Maximum number of callbacks buffered beyond the worker queue.
	Capacity int

	// How often to move buffered callbacks back into the worker queue.
	DrainInterval time.Duration

	// What to do when the ring is full:
	// "fifo" (drop oldest), "lifo" (drop the incoming callback), "reject" (ErrQueueFull).
	EvictionStrategy string
}

// WithOverflow enables the overflow ring in pooled mode.
func WithOverflow(cfg OverflowConfig) Option {
	return func(c *config) {
		c.overflow = &cfg
	}
}
