package rating

import "github.com/codeclash/arena/internal/arena"

// Store defines the database operations required by the controller.
type Store interface {
	GetPlayers(playerIDs []string) ([]arena.PlayerInfo, error)
	RecordConclusion(rec *arena.ConclusionRecord, players []arena.PlayerInfo) error
	GetFrozenChanges() ([]arena.RatingChange, error)
	ClearFrozenChange(changeID string) (*arena.RatingChange, error)
}
