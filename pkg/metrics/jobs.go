package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records scheduled job runs and the carts they prune.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	pruned   prometheus.Counter
}

// NewJobMetrics registers the job metrics. A nil registerer yields a no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduled_job_duration_seconds",
		Help:    "Duration of scheduled jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduled_job_runs_total",
		Help: "Scheduled job runs by job and outcome.",
	}, []string{"job", "outcome"})
	pruned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_snapshots_pruned_total",
		Help: "Stored carts deleted by the retention job.",
	})
	reg.MustRegister(duration, runs, pruned)
	return &JobMetrics{duration: duration, runs: runs, pruned: pruned}
}

// ObserveJob records one run of job.
func (m *JobMetrics) ObserveJob(job string, duration time.Duration, err error) {
	if m == nil || m.runs == nil {
		return
	}
	job = normalizeLabel(job)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.duration.WithLabelValues(job).Observe(duration.Seconds())
	m.runs.WithLabelValues(job, outcome).Inc()
}

// AddPruned counts deleted cart snapshots.
func (m *JobMetrics) AddPruned(n int64) {
	if m == nil || m.pruned == nil || n <= 0 {
		return
	}
	m.pruned.Add(float64(n))
}
