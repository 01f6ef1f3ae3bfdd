package engine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of an Engine.
type Metrics struct {
	Records     prometheus.Counter
	Bytes       prometheus.Counter
	Workers     prometheus.Gauge
	Keys        prometheus.Gauge
	Collisions  prometheus.Counter
	RunDuration *prometheus.HistogramVec
}

// NewMetrics creates the engine metrics and registers them with reg.
// Metrics already registered by another engine on the same registry are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Records: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onebrc_records_total",
			Help: "Total records aggregated",
		})),
		Bytes: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onebrc_bytes_total",
			Help: "Total input bytes scanned, after decompression",
		})),
		Workers: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onebrc_workers",
			Help: "Workers used by the last run",
		})),
		Keys: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onebrc_keys",
			Help: "Distinct keys in the last result",
		})),
		Collisions: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onebrc_key_collisions_total",
			Help: "Distinct keys that shared a digest with another key",
		})),
		RunDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onebrc_run_duration_seconds",
			Help:    "Wall time of completed runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"mode"})),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}

	return c
}
