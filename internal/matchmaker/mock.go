package matchmaker

import (
	"sync"
	"time"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/google/uuid"
)

// MockCreator is a mock implementation of the MatchCreator interface for
// testing. It is safe for concurrent use.
type MockCreator struct {
	mu sync.Mutex

	CreateMatchFunc func(playerA, playerB string, ch *challenge.Challenge, timeLimit time.Duration, dryRun bool) (*arena.MatchSnapshot, error)

	CreateMatchCalls []struct {
		PlayerA   string
		PlayerB   string
		TimeLimit time.Duration
	}
}

// NewMockCreator creates a new mock match creator.
func NewMockCreator() *MockCreator {
	return &MockCreator{}
}

func (m *MockCreator) CreateMatch(playerA, playerB string, ch *challenge.Challenge, timeLimit time.Duration, dryRun bool) (*arena.MatchSnapshot, error) {
	m.mu.Lock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, struct {
		PlayerA   string
		PlayerB   string
		TimeLimit time.Duration
	}{playerA, playerB, timeLimit})
	fn := m.CreateMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(playerA, playerB, ch, timeLimit, dryRun)
	}
	return &arena.MatchSnapshot{
		ID:          uuid.NewString(),
		ChallengeID: ch.ID,
		State:       arena.StateActive,
	}, nil
}

// MockPlayerSource is a mock implementation of the PlayerSource interface
// for testing.
type MockPlayerSource struct {
	mu sync.Mutex

	GetPlayerFunc func(playerID string) (*arena.PlayerInfo, error)

	GetPlayerCalls []string
}

// NewMockPlayerSource creates a new mock player source.
func NewMockPlayerSource() *MockPlayerSource {
	return &MockPlayerSource{}
}

func (m *MockPlayerSource) GetPlayer(playerID string) (*arena.PlayerInfo, error) {
	m.mu.Lock()
	m.GetPlayerCalls = append(m.GetPlayerCalls, playerID)
	fn := m.GetPlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(playerID)
	}
	return &arena.PlayerInfo{ID: playerID, Rating: arena.DefaultRating, RatingConfidence: arena.DefaultConfidence}, nil
}
