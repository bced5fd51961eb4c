// Package metrics holds the node's Prometheus collectors. A nil *Metrics records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kvstore"

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quorumFailures  *prometheus.CounterVec
	peerFailures    *prometheus.CounterVec
	readRepairs     *prometheus.CounterVec
	conflicts       prometheus.Counter
	peerUp          *prometheus.GaugeVec
	breakerState    *prometheus.GaugeVec
}

// New registers every collector on reg. Passing nil creates a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Coordinator requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Coordinator request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"operation"}),
		quorumFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quorum_failures_total",
			Help:      "Requests that did not reach their quorum.",
		}, []string{"operation"}),
		peerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_call_failures_total",
			Help:      "Failed replica calls by operation and peer.",
		}, []string{"operation", "peer"}),
		readRepairs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_repairs_total",
			Help:      "Read repairs by result.",
		}, []string{"result"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_conflicts_total",
			Help:      "Reads that returned concurrent versions.",
		}),
		peerUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peer_up",
			Help:      "1 when the last health poll of a peer succeeded.",
		}, []string{"peer"}),
		breakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peer_circuit_open",
			Help:      "1 while the circuit breaker for a peer is not closed.",
		}, []string{"peer"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(operation, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) QuorumFailed(operation string) {
	if m == nil {
		return
	}
	m.quorumFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) PeerCallFailed(operation, peer string) {
	if m == nil {
		return
	}
	m.peerFailures.WithLabelValues(operation, peer).Inc()
}

func (m *Metrics) ReadRepair(result string) {
	if m == nil {
		return
	}
	m.readRepairs.WithLabelValues(result).Inc()
}

func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) SetPeerUp(peer string, up bool) {
	if m == nil {
		return
	}
	m.peerUp.WithLabelValues(peer).Set(boolToFloat(up))
}

func (m *Metrics) SetBreakerOpen(peer string, open bool) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(peer).Set(boolToFloat(open))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
