package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchStarted       EventType = "match_started"
	EventSubmissionReceived EventType = "submission_received"
	EventOpponentSubmitted  EventType = "opponent_submitted"
	EventMatchConcluded     EventType = "match_concluded"
	EventRatingUpdated      EventType = "rating_updated"
	EventRatingFrozen       EventType = "rating_frozen"
	EventQueueTimeout       EventType = "queue_timeout"
)
