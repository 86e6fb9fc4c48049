// Package metrics implements Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/pcapreport/internal/core"
)

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// CapturedPacketsTotal counts frames saved by live captures
	CapturedPacketsTotal prometheus.Counter

	// PacketsTotal counts frames read by the analyzer
	PacketsTotal prometheus.Counter

	// PayloadPacketsTotal counts frames that produced a record
	PayloadPacketsTotal prometheus.Counter

	// RecordsMatchedTotal counts records whose text is an HTTP line
	RecordsMatchedTotal prometheus.Counter

	// DecodeErrorsTotal counts frames gopacket decoded only partially
	DecodeErrorsTotal prometheus.Counter

	// SinkRowsTotal counts rows written per sink
	SinkRowsTotal *prometheus.CounterVec

	// SinkFailuresTotal counts failed exports per sink
	SinkFailuresTotal *prometheus.CounterVec

	// SinkDurationSeconds measures export duration per sink
	SinkDurationSeconds *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CapturedPacketsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pcapreport_captured_packets_total",
			Help: "Total number of packets saved by live captures",
		}),
		PacketsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pcapreport_packets_total",
			Help: "Total number of packets read from capture files",
		}),
		PayloadPacketsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pcapreport_payload_packets_total",
			Help: "Total number of packets carrying a raw payload",
		}),
		RecordsMatchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pcapreport_records_matched_total",
			Help: "Total number of records with an HTTP request or response line",
		}),
		DecodeErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pcapreport_decode_errors_total",
			Help: "Total number of packets that failed to decode completely",
		}),
		SinkRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pcapreport_sink_rows_total",
				Help: "Total number of rows written per sink",
			},
			[]string{"sink"},
		),
		SinkFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pcapreport_sink_failures_total",
				Help: "Total number of failed exports per sink",
			},
			[]string{"sink"},
		),
		SinkDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pcapreport_sink_duration_seconds",
				Help:    "Duration of an export per sink in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
			},
			[]string{"sink"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStats adds one analyzer run.
func (m *Metrics) ObserveStats(s core.Stats) {
	m.PacketsTotal.Add(float64(s.Packets))
	m.PayloadPacketsTotal.Add(float64(s.PayloadPackets))
	m.RecordsMatchedTotal.Add(float64(s.Matched))
	m.DecodeErrorsTotal.Add(float64(s.DecodeErrors))
}

// ObserveSink adds one export.
func (m *Metrics) ObserveSink(sink string, rows int, d time.Duration, err error) {
	m.SinkRowsTotal.WithLabelValues(sink).Add(float64(rows))
	m.SinkDurationSeconds.WithLabelValues(sink).Observe(d.Seconds())
	if err != nil {
		m.SinkFailuresTotal.WithLabelValues(sink).Inc()
	}
}

// WriteTextfile writes the registry in text exposition format for the node exporter
// textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metrics textfile path is empty")
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
