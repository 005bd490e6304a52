package node

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics are the prometheus collectors of a node. Each node registers them in
// its own registry so that several nodes can run in one process.
type Metrics struct {
	registry *prometheus.Registry

	dutiesProcessed *prometheus.CounterVec
	dutyErrors      *prometheus.CounterVec
	received        *prometheus.CounterVec
	sent            *prometheus.CounterVec
	duplicates      prometheus.Counter
	stage           prometheus.Gauge
	queueLen        prometheus.Gauge
}

// NewMetrics creates and registers the node's collectors.
func NewMetrics(nodeName string) *Metrics {
	labels := prometheus.Labels{"node": nodeName}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dutiesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "vault",
			Name:        "duties_processed_total",
			Help:        "Duties processed, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		dutyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "vault",
			Name:        "duty_errors_total",
			Help:        "Duties that failed, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "vault",
			Name:        "messages_received_total",
			Help:        "Inbound messages, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "vault",
			Name:        "messages_sent_total",
			Help:        "Outbound messages, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "vault",
			Name:        "duplicate_messages_total",
			Help:        "Inbound messages dropped because they were already seen.",
			ConstLabels: labels,
		}),
		stage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "vault",
			Name:        "stage",
			Help:        "Current stage of the node (0 Infant ... 6 Elder).",
			ConstLabels: labels,
		}),
		queueLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "vault",
			Name:        "duty_queue_length",
			Help:        "Elder duties waiting for the promotion to finish.",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.dutiesProcessed,
		m.dutyErrors,
		m.received,
		m.sent,
		m.duplicates,
		m.stage,
		m.queueLen,
		collectors.NewGoCollector(),
	)

	return m
}

// Registry ...
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
