package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus instrumentation for the engine. All fields are
// optional at call sites: a nil *Metrics disables instrumentation.
type Metrics struct {
	CompilesTotal       prometheus.Counter
	CompileFailures     prometheus.Counter
	DiagnosticsTotal    prometheus.Counter
	CompileDuration     prometheus.Histogram
	DispatchesTotal     *prometheus.CounterVec
	AdvancesTotal       prometheus.Counter
	ActiveInstanceGauge prometheus.Gauge
}

// NewMetrics registers the engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CompilesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "actiflow_compiles_total",
			Help: "Number of documents compiled into definitions.",
		}),
		CompileFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "actiflow_compile_failures_total",
			Help: "Number of documents rejected for missing mandatory structure.",
		}),
		DiagnosticsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "actiflow_compile_diagnostics_total",
			Help: "Number of constructs skipped or repaired during compilation.",
		}),
		CompileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "actiflow_compile_duration_seconds",
			Help:    "Time spent compiling a document.",
			Buckets: prometheus.DefBuckets,
		}),
		DispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "actiflow_dispatches_total",
			Help: "Number of action dispatches by outcome.",
		}, []string{"status"}),
		AdvancesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "actiflow_advances_total",
			Help: "Number of instance transitions applied.",
		}),
		ActiveInstanceGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "actiflow_active_instances",
			Help: "Number of instances currently tracked by the store.",
		}),
	}
}

// ObserveDispatch records one dispatch outcome.
func (m *Metrics) ObserveDispatch(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.DispatchesTotal.WithLabelValues(status).Inc()
}
