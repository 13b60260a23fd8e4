package notifier

import (
	"github.com/codeclash/arena/internal/arena"
)

// Notifier defines a high-level interface for publishing live match events.
// Events for one match are delivered in causal order; cross-match ordering
// is not guaranteed. This decouples the orchestrator from the specific
// delivery layer (e.g. Pub/Sub).
type Notifier interface {
	SendMatchStarted(snap *arena.MatchSnapshot, dryRun bool) error
	SendSubmissionReceived(matchID, playerID string, seq int, dryRun bool) error
	SendOpponentSubmitted(matchID, playerID string, dryRun bool) error
	SendMatchConcluded(snap *arena.MatchSnapshot, dryRun bool) error
	SendRatingUpdated(change arena.RatingChange, dryRun bool) error
	SendRatingFrozen(change arena.RatingChange, dryRun bool) error
	SendQueueTimeout(playerID string, dryRun bool) error
}

// Alerter defines the operator-facing review notifications. This keeps the
// settlement path decoupled from the specific alerting provider (e.g. Slack).
type Alerter interface {
	SendIntegrityAlert(rec arena.IntegrityRecord, dryRun bool) error
	SendFreezeNotice(change arena.RatingChange, dryRun bool) error
	SendClearanceNotice(change arena.RatingChange, dryRun bool) error
}
