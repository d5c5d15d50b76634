// Package metrics exposes prometheus collectors for the send lifecycles and
// the rpc gateway.
package metrics

import (
	"sync"
	"time"

	"github.com/0xPolygon/ethtx-gateway/jsonrpc"
	"github.com/0xPolygon/ethtx-gateway/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ethtx_gateway"

// Metrics holds the collectors registered for a single gateway instance
type Metrics struct {
	lifecycleEvents    *prometheus.CounterVec
	rpcRequests        *prometheus.CounterVec
	rpcRequestDuration *prometheus.HistogramVec
	replacementsPerTx  prometheus.Histogram
	inflight           prometheus.Gauge

	mu           sync.Mutex
	replacements map[string]int
}

// New creates the collectors and registers them in reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		lifecycleEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_events_total",
			Help:      "The total number of send lifecycle events by kind",
		}, []string{"kind"}),
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "The total number of endpoint attempts by outcome",
		}, []string{"endpoint", "outcome"}),
		rpcRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "Duration of the endpoint attempts",
			Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method"}),
		replacementsPerTx: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replacements_per_tx",
			Help:      "Fee replacements performed by the finished send requests",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_requests",
			Help:      "Send requests that are being processed",
		}),
		replacements: make(map[string]int),
	}
}

// Register creates the collectors in the default prometheus registry
func Register() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// Emit implements types.EventSink
func (m *Metrics) Emit(e types.Event) {
	m.lifecycleEvents.WithLabelValues(e.Kind.String()).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case e.Kind == types.EventQueued:
		m.track(e.RequestID, 0)
	case e.Kind == types.EventBroadcast:
		// requests resumed after a restart start here with their stored replacements
		m.track(e.RequestID, e.Attempt)
	case e.Kind == types.EventReplaced:
		m.track(e.RequestID, e.Attempt)
		m.replacements[e.RequestID] = e.Attempt
	case e.Kind.Terminal():
		replacements, tracked := m.replacements[e.RequestID]
		if tracked {
			delete(m.replacements, e.RequestID)
			m.inflight.Dec()
		}
		m.replacementsPerTx.Observe(float64(replacements))
	}
}

func (m *Metrics) track(id string, replacements int) {
	if _, tracked := m.replacements[id]; tracked {
		return
	}
	m.inflight.Inc()
	m.replacements[id] = replacements
}

// Observe implements jsonrpc.Observer
func (m *Metrics) Observe(endpoint, method string, outcome jsonrpc.Outcome, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(endpoint, string(outcome)).Inc()
	m.rpcRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
