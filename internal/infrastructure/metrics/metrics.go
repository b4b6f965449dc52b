package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "afterlife"

// Metrics groups the service collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	StoreRequests *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	Deliveries    *prometheus.CounterVec
	SweepDuration prometheus.Histogram
	Unlocks       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		StoreRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Content store calls by operation and result",
		}, []string{"op", "result"}),
		StoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "request_duration_seconds",
			Help:      "Elapsed time of content store calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "vaults_total",
			Help:      "Vault deliveries by trigger and result",
		}, []string{"trigger", "result"}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "sweep_duration_seconds",
			Help:      "Elapsed time of a trigger sweep",
		}),
		Unlocks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "unlocks_total",
			Help:      "Vault unlock attempts by scheme and result",
		}, []string{"scheme", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Result turns an error into a label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
