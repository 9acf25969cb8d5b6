package evchan

import "github.com/prometheus/client_golang/prometheus"

// Put outcomes recorded by [Metrics].
const (
	putDelivered = "delivered"
	putBuffered  = "buffered"
	putDiscarded = "discarded"
	putClosed    = "closed"
)

// Take outcomes recorded by [Metrics].
const (
	takeBuffered = "buffered"
	takeEnd      = "end"
	takePending  = "pending"
)

// Metrics exports channel activity to Prometheus. A put stored in the
// buffer counts as "buffered" even when the buffer's overflow policy drops
// a value for it; the dropped values are counted by
// evchan_buffer_drops_total. It implements
// [prometheus.Collector]; register it once and pass it to any number of
// channels with [WithMetrics].
//
//	m := evchan.NewMetrics("myapp")
//	prometheus.MustRegister(m)
//	ch := evchan.New[string](evchan.WithName("jobs"), evchan.WithMetrics(m))
type Metrics struct {
	puts    *prometheus.CounterVec
	takes   *prometheus.CounterVec
	cancels *prometheus.CounterVec
	closes  *prometheus.CounterVec
	drops   *prometheus.CounterVec
	pending *prometheus.GaugeVec
}

// NewMetrics creates the metric vectors under the given namespace.
// An empty namespace yields names prefixed with "evchan_" only.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		puts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evchan",
				Name:      "puts_total",
				Help:      "Values put into the channel, by outcome.",
			},
			[]string{"channel", "outcome"},
		),
		takes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evchan",
				Name:      "takes_total",
				Help:      "Take calls, by how they were answered.",
			},
			[]string{"channel", "outcome"},
		),
		cancels: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evchan",
				Name:      "cancels_total",
				Help:      "Pending takers removed by Cancel.",
			},
			[]string{"channel"},
		),
		closes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evchan",
				Name:      "closes_total",
				Help:      "Channel close transitions.",
			},
			[]string{"channel"},
		),
		drops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evchan",
				Name:      "buffer_drops_total",
				Help:      "Values dropped by the buffer's overflow policy.",
			},
			[]string{"channel"},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "evchan",
				Name:      "pending_takers",
				Help:      "Takers currently waiting for a value.",
			},
			[]string{"channel"},
		),
	}
}

// Describe implements [prometheus.Collector].
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.puts.Describe(ch)
	m.takes.Describe(ch)
	m.cancels.Describe(ch)
	m.closes.Describe(ch)
	m.drops.Describe(ch)
	m.pending.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.puts.Collect(ch)
	m.takes.Collect(ch)
	m.cancels.Collect(ch)
	m.closes.Collect(ch)
	m.drops.Collect(ch)
	m.pending.Collect(ch)
}

func (m *Metrics) put(name, outcome string) {
	if m == nil {
		return
	}
	m.puts.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) take(name, outcome string) {
	if m == nil {
		return
	}
	m.takes.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) cancel(name string) {
	if m == nil {
		return
	}
	m.cancels.WithLabelValues(name).Inc()
}

func (m *Metrics) close(name string) {
	if m == nil {
		return
	}
	m.closes.WithLabelValues(name).Inc()
}

func (m *Metrics) drop(name string, n uint64) {
	if m == nil {
		return
	}
	m.drops.WithLabelValues(name).Add(float64(n))
}

func (m *Metrics) setPending(name string, n int) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(name).Set(float64(n))
}
