package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesStarted()
	IncMatchesConcluded(cause string)
	IncSubmissions()
	ObserveEvaluationDuration(duration float64)
	IncEvaluationErrors()
	IncIntegrityFlags(action string)
	IncRatingFreezes()
	IncQueueTimeouts()
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore defines durable counters kept in the database, surviving
// process restarts unlike the in-memory Prometheus registry.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
