package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "clubledger_"

	resultSuccess = "success"
	resultError   = "error"

	overrideActionApply  = "apply"
	overrideActionRemove = "remove"
)

var (
	registerOnce sync.Once

	recalcTotal   *prometheus.CounterVec
	recalcLatency *prometheus.HistogramVec

	overrideTotal *prometheus.CounterVec

	rollupTotal   *prometheus.CounterVec
	rollupLatency *prometheus.HistogramVec

	statementExportTotal   *prometheus.CounterVec
	statementExportLatency *prometheus.HistogramVec

	eventsPublished *prometheus.CounterVec

	consumerLag *prometheus.GaugeVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		recalcTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "recalculation_total",
				Help: "Total match fee recalculations by result",
			},
			[]string{"result"},
		)
		recalcLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "recalculation_latency_seconds",
				Help:    "Match fee recalculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		overrideTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "override_operations_total",
				Help: "Total fee override operations by action and result",
			},
			[]string{"action", "result"},
		)

		rollupTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stats_rollup_total",
				Help: "Total monthly stats rollups by result",
			},
			[]string{"result"},
		)
		rollupLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "stats_rollup_latency_seconds",
				Help:    "Monthly stats rollup latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		statementExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_export_total",
				Help: "Total statement export operations by format and result",
			},
			[]string{"format", "result"},
		)
		statementExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_export_latency_seconds",
				Help:    "Statement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		eventsPublished = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		)

		consumerLag = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "event_consumer_lag_seconds",
				Help: "Consumer processing lag in seconds",
			},
			[]string{"consumer"},
		)

		prometheus.MustRegister(
			recalcTotal,
			recalcLatency,
			overrideTotal,
			rollupTotal,
			rollupLatency,
			statementExportTotal,
			statementExportLatency,
			eventsPublished,
			consumerLag,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveRecalculation records recalculation latency and result.
func ObserveRecalculation(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if recalcTotal != nil {
		recalcTotal.WithLabelValues(result).Inc()
	}
	if recalcLatency != nil {
		recalcLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncOverrideOperation increments the override operation counter.
func IncOverrideOperation(action, result string) {
	if action == "" {
		action = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if overrideTotal != nil {
		overrideTotal.WithLabelValues(action, result).Inc()
	}
}

// ObserveRollup records rollup latency and result.
func ObserveRollup(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if rollupTotal != nil {
		rollupTotal.WithLabelValues(result).Inc()
	}
	if rollupLatency != nil {
		rollupLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveStatementExport records export latency and result.
func ObserveStatementExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if statementExportTotal != nil {
		statementExportTotal.WithLabelValues(format, result).Inc()
	}
	if statementExportLatency != nil {
		statementExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncEventPublished increments the published event counter.
func IncEventPublished(eventType string) {
	if eventType == "" {
		eventType = "unknown"
	}
	if eventsPublished != nil {
		eventsPublished.WithLabelValues(eventType).Inc()
	}
}

// ObserveConsumerLag sets consumer lag in seconds.
func ObserveConsumerLag(consumer string, lag time.Duration) {
	if consumer == "" {
		consumer = "unknown"
	}
	if lag < 0 {
		lag = 0
	}
	if consumerLag != nil {
		consumerLag.WithLabelValues(consumer).Set(lag.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	OverrideActionApply  = overrideActionApply
	OverrideActionRemove = overrideActionRemove
)
