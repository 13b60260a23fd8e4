package feed

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
	"github.com/codeclash/arena/internal/pubsub"
)

// Topic is the Pub/Sub topic carrying the live match feed consumed by the
// client-facing push layer.
const Topic = "match-events"

// A stuck publish must not stall the conclusion sequence for long.
const publishTimeout = 5 * time.Second

var _ notifier.Notifier = (*Notifier)(nil)

// Notifier publishes match events to the live feed. Calls for one match are
// made sequentially by the orchestrator, and each publish is synchronous, so
// per-match causal ordering holds without any extra sequencing.
type Notifier struct {
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
}

// NewNotifier creates a new feed Notifier.
func NewNotifier(ps pubsub.PubSubClient, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		pubsub:  ps,
		metrics: metrics,
	}
}

// Event is the wire shape of one feed entry.
type Event struct {
	Type      pubsub.EventType `msgpack:"type"`
	MatchID   string           `msgpack:"match_id,omitempty"`
	PlayerID  string           `msgpack:"player_id,omitempty"`
	Seq       int              `msgpack:"seq,omitempty"`
	Snapshot  any              `msgpack:"snapshot,omitempty"`
	Change    any              `msgpack:"change,omitempty"`
	Timestamp int64            `msgpack:"ts"`
}

func (n *Notifier) publish(event Event, dryRun bool) error {
	event.Timestamp = time.Now().Unix()
	if dryRun {
		log.Info("[Dry Run] Would publish feed event", "type", event.Type, "matchID", event.MatchID)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := n.pubsub.SendMessage(ctx, Topic, event); err != nil {
		n.metrics.IncNotifFailed()
		log.Error("Failed to publish feed event", "type", event.Type, "matchID", event.MatchID, "error", err)
		return err
	}
	n.metrics.IncNotifSent()
	return nil
}

func (n *Notifier) SendMatchStarted(snap *arena.MatchSnapshot, dryRun bool) error {
	return n.publish(Event{Type: pubsub.EventMatchStarted, MatchID: snap.ID, Snapshot: snap}, dryRun)
}

func (n *Notifier) SendSubmissionReceived(matchID, playerID string, seq int, dryRun bool) error {
	return n.publish(Event{Type: pubsub.EventSubmissionReceived, MatchID: matchID, PlayerID: playerID, Seq: seq}, dryRun)
}

func (n *Notifier) SendOpponentSubmitted(matchID, playerID string, dryRun bool) error {
	return n.publish(Event{Type: pubsub.EventOpponentSubmitted, MatchID: matchID, PlayerID: playerID}, dryRun)
}

func (n *Notifier) SendMatchConcluded(snap *arena.MatchSnapshot, dryRun bool) error {
	return n.publish(Event{Type: pubsub.EventMatchConcluded, MatchID: snap.ID, Snapshot: snap}, dryRun)
}

func (n *Notifier) SendRatingUpdated(change arena.RatingChange, dryRun bool) error {
	return n.publish(Event{Type: pubsub.EventRatingUpdated, MatchID: change.MatchID, PlayerID: change.PlayerID, Change: change}, dryRun)
}

func (n *Notifier) SendRatingFrozen(change arena.RatingChange, dryRun bool) error {
	return n.publish(Event{Type: pubsub.EventRatingFrozen, MatchID: change.MatchID, PlayerID: change.PlayerID, Change: change}, dryRun)
}

func (n *Notifier) SendQueueTimeout(playerID string, dryRun bool) error {
	return n.publish(Event{Type: pubsub.EventQueueTimeout, PlayerID: playerID}, dryRun)
}
