package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the detection core.
type Metrics struct {
	LogsIngested prometheus.Counter
	IngestErrors *prometheus.CounterVec
	AlertsFired  *prometheus.CounterVec
	BufferTrims  prometheus.Counter
	SinkErrors   prometheus.Counter
}

// New registers and returns the detection core metrics.
func New() *Metrics {
	return &Metrics{
		LogsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bunasiem_logs_ingested_total",
			Help: "Total number of log records ingested",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bunasiem_ingest_errors_total",
			Help: "Total number of failed ingestion calls by error kind",
		}, []string{"kind"}),
		AlertsFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bunasiem_alerts_total",
			Help: "Total number of alerts fired by rule and severity",
		}, []string{"rule", "severity"}),
		BufferTrims: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bunasiem_buffer_trims_total",
			Help: "Total number of retention buffer truncations",
		}),
		SinkErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bunasiem_alert_sink_errors_total",
			Help: "Total number of alert sink write failures",
		}),
	}
}

// IncIngested counts one successful ingestion.
func (m *Metrics) IncIngested() {
	if m != nil {
		m.LogsIngested.Inc()
	}
}

// IncIngestError counts one failed ingestion by error kind.
func (m *Metrics) IncIngestError(kind string) {
	if m != nil {
		m.IngestErrors.WithLabelValues(kind).Inc()
	}
}

// IncAlert counts one fired alert.
func (m *Metrics) IncAlert(rule, severity string) {
	if m != nil {
		m.AlertsFired.WithLabelValues(rule, severity).Inc()
	}
}

// IncBufferTrim counts one buffer truncation.
func (m *Metrics) IncBufferTrim() {
	if m != nil {
		m.BufferTrims.Inc()
	}
}

// IncSinkError counts one alert sink failure.
func (m *Metrics) IncSinkError() {
	if m != nil {
		m.SinkErrors.Inc()
	}
}
