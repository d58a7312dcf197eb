// Package metrics registers prometheus instruments for the batch jobs.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config labels every instrument with the emitting service.
type Config struct {
	ServiceName string
	Environment string
}

type JobMetrics struct {
	recordsRead    *prometheus.CounterVec
	recordsSkipped *prometheus.CounterVec
	rowsWritten    *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
}

var (
	jobMetricsOnce sync.Once
	jobMetrics     *JobMetrics
)

func Job() *JobMetrics {
	return JobWithConfig(Config{})
}

func JobWithConfig(cfg Config) *JobMetrics {
	jobMetricsOnce.Do(func() {
		jobMetrics = newJobMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return jobMetrics
}

func ResetJobMetricsForTest() {
	jobMetricsOnce = sync.Once{}
	jobMetrics = nil
}

func newJobMetrics(registerer prometheus.Registerer, cfg Config) *JobMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "cleanbox-cron"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	recordsRead := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "cleanbox_job_records_read_total",
			Help:        "Draft box documents fetched from the operational store.",
			ConstLabels: constLabels,
		},
		[]string{"job"},
	)

	recordsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "cleanbox_job_records_skipped_total",
			Help:        "Draft boxes excluded from aggregates by join misses or status filters.",
			ConstLabels: constLabels,
		},
		[]string{"job", "reason"},
	)

	rowsWritten := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "cleanbox_job_rows_written_total",
			Help:        "Aggregate rows published to the analytical store.",
			ConstLabels: constLabels,
		},
		[]string{"job", "result"}, // success | failed
	)

	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "cleanbox_job_run_duration_seconds",
			Help:        "End-to-end batch run duration.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"job", "result"},
	)

	registerer.MustRegister(
		recordsRead,
		recordsSkipped,
		rowsWritten,
		runDuration,
	)

	return &JobMetrics{
		recordsRead:    recordsRead,
		recordsSkipped: recordsSkipped,
		rowsWritten:    rowsWritten,
		runDuration:    runDuration,
	}
}

func (m *JobMetrics) AddRecordsRead(job string, count int) {
	if m == nil {
		return
	}
	m.recordsRead.WithLabelValues(job).Add(float64(count))
}

func (m *JobMetrics) IncSkipped(job, reason string) {
	if m == nil {
		return
	}
	m.recordsSkipped.WithLabelValues(job, reason).Inc()
}

func (m *JobMetrics) AddRowsWritten(job, result string, count int) {
	if m == nil {
		return
	}
	m.rowsWritten.WithLabelValues(job, result).Add(float64(count))
}

func (m *JobMetrics) ObserveRunDuration(job, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(job, result).Observe(d.Seconds())
}
