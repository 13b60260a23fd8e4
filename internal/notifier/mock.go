package notifier

import (
	"sync"

	"github.com/codeclash/arena/internal/arena"
)

// Mock is a mock implementation of the Notifier and Alerter interfaces for
// testing. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendMatchStartedCalls       []*arena.MatchSnapshot
	SendSubmissionReceivedCalls []struct {
		MatchID  string
		PlayerID string
		Seq      int
	}
	SendOpponentSubmittedCalls []struct {
		MatchID  string
		PlayerID string
	}
	SendMatchConcludedCalls  []*arena.MatchSnapshot
	SendRatingUpdatedCalls   []arena.RatingChange
	SendRatingFrozenCalls    []arena.RatingChange
	SendQueueTimeoutCalls    []string
	SendIntegrityAlertCalls  []arena.IntegrityRecord
	SendFreezeNoticeCalls    []arena.RatingChange
	SendClearanceNoticeCalls []arena.RatingChange

	// Events records every call in arrival order, for ordering assertions.
	Events []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchStartedCalls = nil
	m.SendSubmissionReceivedCalls = nil
	m.SendOpponentSubmittedCalls = nil
	m.SendMatchConcludedCalls = nil
	m.SendRatingUpdatedCalls = nil
	m.SendRatingFrozenCalls = nil
	m.SendQueueTimeoutCalls = nil
	m.SendIntegrityAlertCalls = nil
	m.SendFreezeNoticeCalls = nil
	m.SendClearanceNoticeCalls = nil
	m.Events = nil
}

func (m *Mock) SendMatchStarted(snap *arena.MatchSnapshot, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchStartedCalls = append(m.SendMatchStartedCalls, snap)
	m.Events = append(m.Events, "match_started")
	return nil
}

func (m *Mock) SendSubmissionReceived(matchID, playerID string, seq int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSubmissionReceivedCalls = append(m.SendSubmissionReceivedCalls, struct {
		MatchID  string
		PlayerID string
		Seq      int
	}{matchID, playerID, seq})
	m.Events = append(m.Events, "submission_received")
	return nil
}

func (m *Mock) SendOpponentSubmitted(matchID, playerID string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendOpponentSubmittedCalls = append(m.SendOpponentSubmittedCalls, struct {
		MatchID  string
		PlayerID string
	}{matchID, playerID})
	m.Events = append(m.Events, "opponent_submitted")
	return nil
}

func (m *Mock) SendMatchConcluded(snap *arena.MatchSnapshot, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchConcludedCalls = append(m.SendMatchConcludedCalls, snap)
	m.Events = append(m.Events, "match_concluded")
	return nil
}

func (m *Mock) SendRatingUpdated(change arena.RatingChange, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingUpdatedCalls = append(m.SendRatingUpdatedCalls, change)
	m.Events = append(m.Events, "rating_updated")
	return nil
}

func (m *Mock) SendRatingFrozen(change arena.RatingChange, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingFrozenCalls = append(m.SendRatingFrozenCalls, change)
	m.Events = append(m.Events, "rating_frozen")
	return nil
}

func (m *Mock) SendQueueTimeout(playerID string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendQueueTimeoutCalls = append(m.SendQueueTimeoutCalls, playerID)
	m.Events = append(m.Events, "queue_timeout")
	return nil
}

func (m *Mock) SendIntegrityAlert(rec arena.IntegrityRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendIntegrityAlertCalls = append(m.SendIntegrityAlertCalls, rec)
	m.Events = append(m.Events, "integrity_alert")
	return nil
}

func (m *Mock) SendFreezeNotice(change arena.RatingChange, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendFreezeNoticeCalls = append(m.SendFreezeNoticeCalls, change)
	m.Events = append(m.Events, "freeze_notice")
	return nil
}

func (m *Mock) SendClearanceNotice(change arena.RatingChange, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendClearanceNoticeCalls = append(m.SendClearanceNoticeCalls, change)
	m.Events = append(m.Events, "clearance_notice")
	return nil
}
