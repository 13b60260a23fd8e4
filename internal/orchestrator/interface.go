package orchestrator

import "github.com/codeclash/arena/internal/arena"

// Store defines the database operations required by the orchestrator.
// Settlement writes go through the rating controller, not here.
type Store interface {
	UpsertPlayers(players []arena.PlayerInfo) error
}
