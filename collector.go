package bindz

import "github.com/prometheus/client_golang/prometheus"

// Collector exports a Registry's Metrics to Prometheus.
//
//	prometheus.MustRegister(bindz.NewCollector(reg, "game"))
type Collector struct {
	reg *Registry

	queueDepth  *prometheus.Desc
	inFlight    *prometheus.Desc
	tasks       *prometheus.Desc
	managers    *prometheus.Desc
	callbacks   *prometheus.Desc
	binds       *prometheus.Desc
	overflow    *prometheus.Desc
	overflowOut *prometheus.Desc
}

// NewCollector creates a collector for reg. Metric names are prefixed
// with namespace when it is not empty.
func NewCollector(reg *Registry, namespace string) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "bindz", n)
	}
	return &Collector{
		reg: reg,
		queueDepth: prometheus.NewDesc(name("queue_depth"),
			"Callbacks waiting in the worker queue.", nil, nil),
		inFlight: prometheus.NewDesc(name("callbacks_in_flight"),
			"Callbacks currently executing.", nil, nil),
		tasks: prometheus.NewDesc(name("callbacks_total"),
			"Callbacks by outcome.", []string{"outcome"}, nil),
		managers: prometheus.NewDesc(name("handles"),
			"Managers and listeners held by the registry.", []string{"kind"}, nil),
		callbacks: prometheus.NewDesc(name("registered_callbacks"),
			"Callbacks registered across all handles.", nil, nil),
		binds: prometheus.NewDesc(name("registered_binds"),
			"Bind names registered across all key listeners.", nil, nil),
		overflow: prometheus.NewDesc(name("overflow_depth"),
			"Callbacks buffered in the overflow ring.", nil, nil),
		overflowOut: prometheus.NewDesc(name("overflow_drained_total"),
			"Callbacks moved from the overflow ring to the worker queue.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queueDepth
	ch <- c.inFlight
	ch <- c.tasks
	ch <- c.managers
	ch <- c.callbacks
	ch <- c.binds
	ch <- c.overflow
	ch <- c.overflowOut
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.reg.Metrics()

	ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(m.QueueDepth))
	ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, float64(m.InFlight))

	for outcome, v := range map[string]int64{
		"dispatched": m.TasksDispatched,
		"processed":  m.TasksProcessed,
		"rejected":   m.TasksRejected,
		"failed":     m.TasksFailed,
		"panicked":   m.TasksPanicked,
		"expired":    m.TasksExpired,
	} {
		ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.CounterValue, float64(v), outcome)
	}

	ch <- prometheus.MustNewConstMetric(c.managers, prometheus.GaugeValue, float64(m.EventManagers), "event_manager")
	ch <- prometheus.MustNewConstMetric(c.managers, prometheus.GaugeValue, float64(m.KeyListeners), "key_listener")
	ch <- prometheus.MustNewConstMetric(c.callbacks, prometheus.GaugeValue, float64(m.RegisteredCallbacks))
	ch <- prometheus.MustNewConstMetric(c.binds, prometheus.GaugeValue, float64(m.RegisteredBinds))
	ch <- prometheus.MustNewConstMetric(c.overflow, prometheus.GaugeValue, float64(m.OverflowDepth))
	ch <- prometheus.MustNewConstMetric(c.overflowOut, prometheus.CounterValue, float64(m.OverflowDrained))
}
