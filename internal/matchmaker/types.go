package matchmaker

import (
	"sync"
	"time"

	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/config"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
)

// Matchmaker pairs queued players by rating proximity. Each waiting ticket's
// acceptance window widens on a schedule until it either finds a mutual
// match or times out.
type Matchmaker struct {
	players   PlayerSource
	generator challenge.GeneratorClient
	creator   MatchCreator
	notifier  notifier.Notifier
	metrics   metrics.Metrics
	cfg       config.MatchmakerConfig

	mu    sync.Mutex
	queue []*Ticket

	// now is swappable for tests.
	now func() time.Time
}

// TicketStatus is the lifecycle state of a queue ticket.
type TicketStatus string

const (
	TicketWaiting TicketStatus = "WAITING"
	TicketMatched TicketStatus = "MATCHED"
	TicketExpired TicketStatus = "EXPIRED"
)

// Ticket is one player's place in the matchmaking queue.
type Ticket struct {
	PlayerID   string       `json:"player_id"`
	Rating     int          `json:"rating"`
	Difficulty string       `json:"difficulty"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
	Status     TicketStatus `json:"status"`
	MatchID    string       `json:"match_id,omitempty"`
}
