package pipeline

import (
	"context"
	"sync"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
)

// MockEvaluator is a mock implementation of the Evaluator interface for
// testing. It is safe for concurrent use.
type MockEvaluator struct {
	mu sync.Mutex

	EvaluateFunc func(ctx context.Context, sub *arena.CodeSubmission, ch *challenge.Challenge) arena.EvaluationResult

	// Call records
	EvaluateCalls []string // submission ids
}

// NewMock creates a new mock evaluator.
func NewMock() *MockEvaluator {
	return &MockEvaluator{}
}

// Reset clears all call records.
func (m *MockEvaluator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EvaluateCalls = nil
}

func (m *MockEvaluator) Evaluate(ctx context.Context, sub *arena.CodeSubmission, ch *challenge.Challenge) arena.EvaluationResult {
	m.mu.Lock()
	m.EvaluateCalls = append(m.EvaluateCalls, sub.ID)
	fn := m.EvaluateFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, sub, ch)
	}
	return arena.EvaluationResult{Status: arena.EvalStatusOK, TotalCases: ch.TotalCases()}
}
