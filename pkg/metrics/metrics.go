package metrics

import (
	"net/http"

	"github.com/NotCoffee418/ignyte_sensor/pkg/gapdetector"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	pipelineRuns    prometheus.Counter
	readingsSkipped prometheus.Counter
	sourceErrors    prometheus.Counter
	seriesLength    prometheus.Gauge
	gapCount        prometheus.Gauge
	periodCount     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ignyte_pipeline_runs_total",
			Help: "Total pipeline runs over a loaded snapshot.",
		}),
		readingsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ignyte_readings_skipped_total",
			Help: "Readings dropped because their push id did not decode.",
		}),
		sourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ignyte_source_errors_total",
			Help: "Snapshot loads that failed.",
		}),
		seriesLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ignyte_series_length",
			Help: "Readings in the latest ordered series.",
		}),
		gapCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ignyte_gap_count",
			Help: "Sampling gaps in the latest series, restart gaps excluded.",
		}),
		periodCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ignyte_daynight_periods",
			Help: "Day and night periods in the latest series.",
		}),
	}

	m.registry.MustRegister(
		m.pipelineRuns,
		m.readingsSkipped,
		m.sourceErrors,
		m.seriesLength,
		m.gapCount,
		m.periodCount,
	)
	return m
}

// ObserveResult records the outcome of one pipeline run.
func (m *Metrics) ObserveResult(result pipeline.Result, maxMissing int) {
	m.pipelineRuns.Inc()
	m.readingsSkipped.Add(float64(len(result.Skipped)))
	m.seriesLength.Set(float64(len(result.Series)))
	m.gapCount.Set(float64(len(gapdetector.FilterGaps(result.Gaps, maxMissing))))
	m.periodCount.Set(float64(len(result.Periods)))
}

func (m *Metrics) ObserveSourceError() {
	m.sourceErrors.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
