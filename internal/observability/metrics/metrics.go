package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "ledger_insight_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	parseFailures   *prometheus.CounterVec
	droppedPayments prometheus.Counter

	pipelineRuns    *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics.
func Init() {
	registerOnce.Do(func() {
		parseFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_failures_total",
				Help: "Total normalization failures by field kind",
			},
			[]string{"field"},
		)
		droppedPayments = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "dropped_payments_total",
				Help: "Total payment records dropped during reconciliation",
			},
		)

		pipelineRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_runs_total",
				Help: "Total analytics pipeline runs by dataset and result",
			},
			[]string{"dataset", "result"},
		)
		pipelineLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_latency_seconds",
				Help:    "Analytics pipeline latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dataset", "result"},
		)

		cacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_lookups_total",
				Help: "Total result cache lookups by dataset and outcome",
			},
			[]string{"dataset", "outcome"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total aging report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Aging report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			parseFailures,
			droppedPayments,
			pipelineRuns,
			pipelineLatency,
			cacheLookups,
			exportTotal,
			exportLatency,
		)
	})
}

// RecordParseFailures adds normalization failure counts per field kind.
func RecordParseFailures(currency, date int) {
	if parseFailures == nil {
		return
	}
	if currency > 0 {
		parseFailures.WithLabelValues("currency").Add(float64(currency))
	}
	if date > 0 {
		parseFailures.WithLabelValues("date").Add(float64(date))
	}
}

// RecordDroppedPayments adds dropped payment counts.
func RecordDroppedPayments(count int) {
	if droppedPayments == nil || count <= 0 {
		return
	}
	droppedPayments.Add(float64(count))
}

// ObservePipeline records a pipeline run.
func ObservePipeline(dataset string, start time.Time, err error) {
	if pipelineRuns == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	pipelineRuns.WithLabelValues(dataset, result).Inc()
	pipelineLatency.WithLabelValues(dataset, result).Observe(time.Since(start).Seconds())
}

// RecordCacheHit records a cache hit for a dataset.
func RecordCacheHit(dataset string) {
	if cacheLookups == nil {
		return
	}
	cacheLookups.WithLabelValues(dataset, "hit").Inc()
}

// RecordCacheMiss records a cache miss for a dataset.
func RecordCacheMiss(dataset string) {
	if cacheLookups == nil {
		return
	}
	cacheLookups.WithLabelValues(dataset, "miss").Inc()
}

// ObserveExport records an aging report export.
func ObserveExport(format string, start time.Time, err error) {
	if exportTotal == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	exportTotal.WithLabelValues(format, result).Inc()
	exportLatency.WithLabelValues(format, result).Observe(time.Since(start).Seconds())
}
