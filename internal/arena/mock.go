package arena

import (
	"sync"
)

// MockStore is a mock implementation of the ArenaStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayersFunc       func(players []PlayerInfo) error
	GetPlayerFunc           func(playerID string) (*PlayerInfo, error)
	GetPlayersFunc          func(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayersFunc       func() ([]PlayerInfo, error)
	IsKnownPlayerFunc       func(playerID string) bool
	RecordConclusionFunc    func(rec *ConclusionRecord, players []PlayerInfo) error
	GetMatchFunc            func(matchID string) (*MatchSnapshot, error)
	GetAllMatchesFunc       func() ([]*MatchSnapshot, error)
	GetFrozenChangesFunc    func() ([]RatingChange, error)
	ClearFrozenChangeFunc   func(changeID string) (*RatingChange, error)
	GetIntegrityRecordsFunc func(matchID string) ([]IntegrityRecord, error)
	GetLeaderboardFunc      func() ([]LeaderboardEntry, error)

	// Call records
	UpsertPlayersCalls     [][]PlayerInfo
	RecordConclusionCalls  []struct {
		Rec     *ConclusionRecord
		Players []PlayerInfo
	}
	ClearFrozenChangeCalls []string
	ClearCalls             int
	ClearMatchCalls        []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = nil
	m.RecordConclusionCalls = nil
	m.ClearFrozenChangeCalls = nil
	m.ClearCalls = 0
	m.ClearMatchCalls = nil
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	fn := m.UpsertPlayersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(players)
	}
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*PlayerInfo, error) {
	m.mu.Lock()
	fn := m.GetPlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(playerID)
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	fn := m.GetPlayersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	fn := m.GetAllPlayersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	fn := m.IsKnownPlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(playerID)
	}
	return false
}

func (m *MockStore) RecordConclusion(rec *ConclusionRecord, players []PlayerInfo) error {
	m.mu.Lock()
	m.RecordConclusionCalls = append(m.RecordConclusionCalls, struct {
		Rec     *ConclusionRecord
		Players []PlayerInfo
	}{rec, players})
	fn := m.RecordConclusionFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(rec, players)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*MatchSnapshot, error) {
	m.mu.Lock()
	fn := m.GetMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID)
	}
	return nil, nil
}

func (m *MockStore) GetAllMatches() ([]*MatchSnapshot, error) {
	m.mu.Lock()
	fn := m.GetAllMatchesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

func (m *MockStore) GetFrozenChanges() ([]RatingChange, error) {
	m.mu.Lock()
	fn := m.GetFrozenChangesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

func (m *MockStore) ClearFrozenChange(changeID string) (*RatingChange, error) {
	m.mu.Lock()
	m.ClearFrozenChangeCalls = append(m.ClearFrozenChangeCalls, changeID)
	fn := m.ClearFrozenChangeFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(changeID)
	}
	return nil, ErrChangeNotFound
}

func (m *MockStore) GetIntegrityRecords(matchID string) ([]IntegrityRecord, error) {
	m.mu.Lock()
	fn := m.GetIntegrityRecordsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID)
	}
	return nil, nil
}

func (m *MockStore) GetLeaderboard() ([]LeaderboardEntry, error) {
	m.mu.Lock()
	fn := m.GetLeaderboardFunc
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}

func (m *MockStore) ClearMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearMatchCalls = append(m.ClearMatchCalls, matchID)
}
