package integrity

import (
	"context"
	"sync"
)

// MockSource is a mock implementation of the FeatureSource interface for
// testing. It is safe for concurrent use.
type MockSource struct {
	mu sync.Mutex

	StylometryDeviationFunc func(ctx context.Context, playerID, code string) (float64, error)
	LLMProbabilityFunc      func(ctx context.Context, code string) (float64, error)
	BehavioralAnomalyFunc   func(ctx context.Context, playerID string, meta SubmissionMeta) (float64, error)

	// Call records
	StylometryCalls []string
	LLMCalls        []string
	BehavioralCalls []string
}

// NewMock creates a new mock feature source.
func NewMock() *MockSource {
	return &MockSource{}
}

// Reset clears all call records.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StylometryCalls = nil
	m.LLMCalls = nil
	m.BehavioralCalls = nil
}

func (m *MockSource) StylometryDeviation(ctx context.Context, playerID, code string) (float64, error) {
	m.mu.Lock()
	m.StylometryCalls = append(m.StylometryCalls, playerID)
	fn := m.StylometryDeviationFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID, code)
	}
	return 0, nil
}

func (m *MockSource) LLMProbability(ctx context.Context, code string) (float64, error) {
	m.mu.Lock()
	m.LLMCalls = append(m.LLMCalls, code)
	fn := m.LLMProbabilityFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, code)
	}
	return 0, nil
}

func (m *MockSource) BehavioralAnomaly(ctx context.Context, playerID string, meta SubmissionMeta) (float64, error) {
	m.mu.Lock()
	m.BehavioralCalls = append(m.BehavioralCalls, playerID)
	fn := m.BehavioralAnomalyFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID, meta)
	}
	return 0, nil
}
