package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finresearch",
			Subsystem: "provider",
			Name:      "latency_seconds",
			Help:      "Latency of outbound provider calls",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "op"},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finresearch",
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Failed outbound provider calls",
		},
		[]string{"provider", "op"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ProviderLatency, ProviderErrors)
	})
}

// Observe records one provider call started at start.
func Observe(provider, op string, start time.Time, err error) {
	ProviderLatency.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
	if err != nil {
		ProviderErrors.WithLabelValues(provider, op).Inc()
	}
}
