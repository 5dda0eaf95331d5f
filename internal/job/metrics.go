package job

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upscaled",
			Subsystem: "job",
			Name:      "jobs_total",
			Help:      "Total jobs by terminal status",
		},
		[]string{"status"},
	)

	jobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "upscaled",
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of completed jobs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	passesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "upscaled",
			Subsystem: "job",
			Name:      "passes_total",
			Help:      "Total inference passes executed",
		},
	)
)

func init() {
	prometheus.MustRegister(jobsTotal, jobDuration, passesTotal)
}
