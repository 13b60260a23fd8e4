package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesStarted     prometheus.Counter
	MatchesConcluded   *prometheus.CounterVec
	SubmissionsTotal   prometheus.Counter
	EvaluationDuration prometheus.Histogram
	EvaluationErrors   prometheus.Counter
	IntegrityFlags     *prometheus.CounterVec
	RatingFreezes      prometheus.Counter
	QueueTimeouts      prometheus.Counter
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
