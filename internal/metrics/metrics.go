package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eratecharge_requests_total",
			Help: "Total number of requests per path and method",
		},
		[]string{"path", "method"},
	)

	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eratecharge_request_duration_seconds",
			Help:    "Request duration in seconds per path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eratecharge_request_errors_total",
			Help: "Total number of error responses per path and status code",
		},
		[]string{"path", "code"},
	)
)

var (
	ChargesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eratecharge_charges_total",
			Help: "Total number of charges computed per tier",
		},
		[]string{"tier"},
	)

	ChargeAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eratecharge_charge_amount",
			Help:    "Distribution of computed charge amounts per tier",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"tier"},
	)

	ChargeRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eratecharge_charge_rejections_total",
			Help: "Total number of charge requests rejected by validation",
		},
	)

	LedgerWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eratecharge_ledger_write_failures_total",
			Help: "Total number of failed ledger writes per driver",
		},
		[]string{"driver"},
	)
)

// ObserveCharge records a computed charge.
func ObserveCharge(tier string, amount float64) {
	ChargesTotal.WithLabelValues(tier).Inc()
	ChargeAmount.WithLabelValues(tier).Observe(amount)
}

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eratecharge_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eratecharge_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eratecharge_job_failures_total",
			Help: "Total number of failed executions per job",
		},
		[]string{"job"},
	)

	LedgerRecordsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eratecharge_ledger_records_pruned_total",
			Help: "Total number of ledger records removed by retention",
		},
	)
)

func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	dur := time.Since(startedAt).Seconds()
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(dur)
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}
