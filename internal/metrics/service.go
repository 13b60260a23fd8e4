package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_matches_started_total",
			Help: "The total number of matches started by the orchestrator.",
		}),
		MatchesConcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_matches_concluded_total",
			Help: "The total number of matches concluded, by closure cause.",
		}, []string{"cause"}),
		SubmissionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_submissions_total",
			Help: "The total number of code submissions accepted.",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arena_evaluation_duration_seconds",
			Help:    "The duration of individual submission evaluations.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),
		EvaluationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_evaluation_errors_total",
			Help: "The total number of degraded evaluations due to external failures.",
		}),
		IntegrityFlags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_integrity_flags_total",
			Help: "The total number of integrity policy actions, by action.",
		}, []string{"action"}),
		RatingFreezes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_rating_freezes_total",
			Help: "The total number of rating changes frozen pending review.",
		}),
		QueueTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_queue_timeouts_total",
			Help: "The total number of matchmaking tickets that expired unmatched.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arena_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesStarted,
		s.MatchesConcluded,
		s.SubmissionsTotal,
		s.EvaluationDuration,
		s.EvaluationErrors,
		s.IntegrityFlags,
		s.RatingFreezes,
		s.QueueTimeouts,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesStarted() {
	s.MatchesStarted.Inc()
}

func (s *Service) IncMatchesConcluded(cause string) {
	s.MatchesConcluded.WithLabelValues(cause).Inc()
}

func (s *Service) IncSubmissions() {
	s.SubmissionsTotal.Inc()
}

func (s *Service) ObserveEvaluationDuration(duration float64) {
	s.EvaluationDuration.Observe(duration)
}

func (s *Service) IncEvaluationErrors() {
	s.EvaluationErrors.Inc()
}

func (s *Service) IncIntegrityFlags(action string) {
	s.IntegrityFlags.WithLabelValues(action).Inc()
}

func (s *Service) IncRatingFreezes() {
	s.RatingFreezes.Inc()
}

func (s *Service) IncQueueTimeouts() {
	s.QueueTimeouts.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
