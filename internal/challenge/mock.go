package challenge

import (
	"context"
	"sync"
)

// MockGenerator is a mock implementation of GeneratorClient for testing.
// It is safe for concurrent use.
type MockGenerator struct {
	mu sync.Mutex

	GenerateChallengeFunc func(ctx context.Context, difficulty string) (*Challenge, error)

	GenerateChallengeCalls []string
}

// NewMock creates a new mock generator.
func NewMock() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) GenerateChallenge(ctx context.Context, difficulty string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateChallengeCalls = append(m.GenerateChallengeCalls, difficulty)
	if m.GenerateChallengeFunc != nil {
		return m.GenerateChallengeFunc(ctx, difficulty)
	}
	return &Challenge{
		ID:    "mock-challenge",
		Title: "Mock Challenge",
		TestCases: []TestCase{
			{Input: "1", Expected: "1"},
			{Input: "2", Expected: "2"},
			{Input: "3", Expected: "3", Hidden: true},
		},
	}, nil
}
