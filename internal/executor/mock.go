package executor

import (
	"context"
	"sync"

	"github.com/codeclash/arena/internal/challenge"
)

// MockExecutor is a mock implementation of the Executor interface for testing.
// It is safe for concurrent use.
type MockExecutor struct {
	mu sync.Mutex

	ExecuteFunc func(ctx context.Context, code, language string, testCases []challenge.TestCase) ([]CaseResult, error)

	// Call records
	ExecuteCalls []ExecuteCall
}

// ExecuteCall holds the arguments for a call to Execute.
type ExecuteCall struct {
	Code     string
	Language string
	Cases    int
}

// NewMock creates a new mock executor.
func NewMock() *MockExecutor {
	return &MockExecutor{}
}

// Reset clears all call records.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecuteCalls = nil
}

func (m *MockExecutor) Execute(ctx context.Context, code, language string, testCases []challenge.TestCase) ([]CaseResult, error) {
	m.mu.Lock()
	m.ExecuteCalls = append(m.ExecuteCalls, ExecuteCall{Code: code, Language: language, Cases: len(testCases)})
	fn := m.ExecuteFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, code, language, testCases)
	}
	results := make([]CaseResult, len(testCases))
	for i := range results {
		results[i] = CaseResult{Passed: true}
	}
	return results, nil
}
