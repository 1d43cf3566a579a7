package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filepond"

// Metrics counts staging operations. A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	sweptBytes prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of filepond operations by kind and outcome",
		}, []string{"op", "status"}),
		sweptBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swept_bytes_total",
			Help:      "Bytes reclaimed by the expired upload sweeper",
		}),
	}
}

// Observe records one operation. err decides the status label.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(op, status).Inc()
}

func (m *Metrics) AddSweptBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptBytes.Add(float64(n))
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
