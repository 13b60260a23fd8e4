package matchmaker

import (
	"time"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
)

// MatchCreator defines the single operation the matchmaker needs from the
// orchestrator. This allows for mock implementations to be used in tests.
type MatchCreator interface {
	CreateMatch(playerA, playerB string, ch *challenge.Challenge, timeLimit time.Duration, dryRun bool) (*arena.MatchSnapshot, error)
}

// PlayerSource looks up a player's current rating when they join the queue.
type PlayerSource interface {
	GetPlayer(playerID string) (*arena.PlayerInfo, error)
}
