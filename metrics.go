package bindz

// Metrics provides observability data for a Registry.
// Counter fields are updated atomically by the dispatcher; registration
// fields are computed when Metrics() is called.
type Metrics struct {
	// Pooled mode queue
	QueueDepth    int64 // Callbacks waiting in the worker queue (atomic)
	QueueCapacity int64 // Worker queue capacity, 0 outside pooled mode

	// Execution counters (atomic operations required)
	InFlight        int64 // Callbacks currently executing
	TasksDispatched int64 // Callbacks handed to the dispatcher
	TasksProcessed  int64 // Callbacks that returned nil
	TasksRejected   int64 // Callbacks rejected because the queue was full
	TasksFailed     int64 // Callbacks that returned an error or panicked
	TasksPanicked   int64 // Subset of TasksFailed that panicked
	TasksExpired    int64 // Callbacks whose context ended before or during execution

	// Registration
	EventManagers       int64 // Managers held by the registry
	KeyListeners        int64 // Listeners held by the registry
	RegisteredCallbacks int64 // Callbacks across all managers and listeners
	RegisteredBinds     int64 // Bind names across all listeners

	// Overflow ring
	OverflowDepth    int64 // Callbacks buffered in the ring
	OverflowCapacity int64 // Ring capacity
	OverflowDrained  int64 // Callbacks moved from the ring to the worker queue
}
