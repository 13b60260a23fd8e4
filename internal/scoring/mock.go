package scoring

import (
	"context"
	"sync"
)

// MockScorer is a mock implementation of the Scorer interface for testing.
// It is safe for concurrent use.
type MockScorer struct {
	mu sync.Mutex

	ScoreQualityFunc    func(ctx context.Context, code string) (float64, error)
	ScoreComplexityFunc func(ctx context.Context, code string) (float64, error)

	// Call records
	ScoreQualityCalls    []string
	ScoreComplexityCalls []string
}

// NewMock creates a new mock scorer.
func NewMock() *MockScorer {
	return &MockScorer{}
}

// Reset clears all call records.
func (m *MockScorer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScoreQualityCalls = nil
	m.ScoreComplexityCalls = nil
}

func (m *MockScorer) ScoreQuality(ctx context.Context, code string) (float64, error) {
	m.mu.Lock()
	m.ScoreQualityCalls = append(m.ScoreQualityCalls, code)
	fn := m.ScoreQualityFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, code)
	}
	return 50, nil
}

func (m *MockScorer) ScoreComplexity(ctx context.Context, code string) (float64, error) {
	m.mu.Lock()
	m.ScoreComplexityCalls = append(m.ScoreComplexityCalls, code)
	fn := m.ScoreComplexityFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, code)
	}
	return 50, nil
}
