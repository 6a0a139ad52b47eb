// Package metrics is the ambient prometheus observability surface carried
// alongside (not instead of) the telemetry byte device and event sink.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge/histogram the simulator exposes.
type Metrics struct {
	SubsystemTicks       *prometheus.CounterVec
	SubsystemDeadlineMiss *prometheus.CounterVec
	SubsystemRestarts    *prometheus.CounterVec
	SubsystemTickSeconds *prometheus.HistogramVec

	TelemetryBufferFill    prometheus.Gauge
	TelemetryDroppedRecords prometheus.Counter

	EventSinkDropped prometheus.Counter

	EngineFaults *prometheus.CounterVec
	EngineThrustPct *prometheus.GaugeVec
}

// Init registers every metric against the given registerer.
func Init(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		SubsystemTicks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sls_subsystem_ticks_total",
			Help: "Completed periodic ticks per subsystem.",
		}, []string{"subsystem"}),

		SubsystemDeadlineMiss: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sls_subsystem_deadline_miss_total",
			Help: "Ticks whose body execution exceeded the configured deadline.",
		}, []string{"subsystem"}),

		SubsystemRestarts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sls_subsystem_restarts_total",
			Help: "Subsystem restarts after a fatal body error.",
		}, []string{"subsystem"}),

		SubsystemTickSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sls_subsystem_tick_seconds",
			Help:    "Wall time spent in a subsystem's periodic body.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"subsystem"}),

		TelemetryBufferFill: f.NewGauge(prometheus.GaugeOpts{
			Name: "sls_telemetry_buffer_fill_bytes",
			Help: "Current resident byte count in the telemetry ring buffer.",
		}),

		TelemetryDroppedRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "sls_telemetry_dropped_records_total",
			Help: "Telemetry records overwritten by the ring buffer's drop-oldest policy.",
		}),

		EventSinkDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "sls_event_sink_dropped_total",
			Help: "Events dropped by the sink due to a full subscriber buffer.",
		}),

		EngineFaults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sls_engine_faults_total",
			Help: "Fault occurrences per engine and fault kind.",
		}, []string{"engine", "kind"}),

		EngineThrustPct: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sls_engine_thrust_pct",
			Help: "Current commanded thrust percentage per engine.",
		}, []string{"engine"}),
	}
}
