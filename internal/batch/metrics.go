package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// File outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusCached = "cached"
)

// Metrics are the batch counters. Each runner registers its own set so runs
// never share state.
type Metrics struct {
	registry *prometheus.Registry

	files    *prometheus.CounterVec
	bytesIn  prometheus.Counter
	bytesOut prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics creates and registers the batch metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "astdigest",
				Subsystem: "batch",
				Name:      "files_total",
				Help:      "Files processed, by outcome.",
			},
			[]string{"status"},
		),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "astdigest",
			Subsystem: "batch",
			Name:      "source_bytes_total",
			Help:      "Bytes of Java source read.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "astdigest",
			Subsystem: "batch",
			Name:      "output_bytes_total",
			Help:      "Bytes of serialized output produced.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "astdigest",
			Subsystem: "batch",
			Name:      "file_duration_seconds",
			Help:      "Time to compress one file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
	}
	m.registry.MustRegister(m.files, m.bytesIn, m.bytesOut, m.duration)
	return m
}

// Registry exposes the metrics for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(r Result) {
	status := StatusOK
	switch {
	case r.Err != nil:
		status = StatusFailed
	case r.Cached:
		status = StatusCached
	}
	m.files.WithLabelValues(status).Inc()
	m.bytesIn.Add(float64(r.BytesIn))
	m.bytesOut.Add(float64(r.BytesOut))
	if !r.Cached && r.Err == nil {
		m.duration.Observe(r.Duration.Seconds())
	}
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
