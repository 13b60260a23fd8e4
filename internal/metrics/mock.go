package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	matchesStarted      int
	matchesConcluded    map[string]int
	submissions         int
	evaluationDurations []float64
	evaluationErrors    int
	integrityFlags      map[string]int
	ratingFreezes       int
	queueTimeouts       int
	notifSent           int
	notifFailed         int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		matchesConcluded: make(map[string]int),
		integrityFlags:   make(map[string]int),
	}
}

func (m *Mock) IncMatchesStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesStarted++
}

func (m *Mock) IncMatchesConcluded(cause string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesConcluded[cause]++
}

func (m *Mock) IncSubmissions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions++
}

func (m *Mock) ObserveEvaluationDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluationDurations = append(m.evaluationDurations, duration)
}

func (m *Mock) IncEvaluationErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluationErrors++
}

func (m *Mock) IncIntegrityFlags(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integrityFlags[action]++
}

func (m *Mock) IncRatingFreezes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingFreezes++
}

func (m *Mock) IncQueueTimeouts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueTimeouts++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesStarted returns the number of times IncMatchesStarted was called.
func (m *Mock) MatchesStarted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesStarted
}

// MatchesConcluded returns the count for a given closure cause.
func (m *Mock) MatchesConcluded(cause string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesConcluded[cause]
}

// Submissions returns the number of times IncSubmissions was called.
func (m *Mock) Submissions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions
}

// EvaluationErrors returns the number of times IncEvaluationErrors was called.
func (m *Mock) EvaluationErrors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluationErrors
}

// IntegrityFlags returns the count for a given action.
func (m *Mock) IntegrityFlags(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.integrityFlags[action]
}

// RatingFreezes returns the number of times IncRatingFreezes was called.
func (m *Mock) RatingFreezes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingFreezes
}

// QueueTimeouts returns the number of times IncQueueTimeouts was called.
func (m *Mock) QueueTimeouts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queueTimeouts
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}
