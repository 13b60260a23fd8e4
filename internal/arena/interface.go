package arena

// ArenaStore defines the interface for the arena's persistent records.
type ArenaStore interface {
	UpsertPlayers(players []PlayerInfo) error
	GetPlayer(playerID string) (*PlayerInfo, error)
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)
	IsKnownPlayer(playerID string) bool

	// RecordConclusion commits a concluded match snapshot together with its
	// integrity audit rows, rating changes and the resulting player updates
	// in one transaction. Applied changes mutate the player's rating;
	// frozen changes are stored but leave the rating untouched.
	RecordConclusion(rec *ConclusionRecord, players []PlayerInfo) error

	GetMatch(matchID string) (*MatchSnapshot, error)
	GetAllMatches() ([]*MatchSnapshot, error)

	GetFrozenChanges() ([]RatingChange, error)
	// ClearFrozenChange re-admits a frozen rating change after manual
	// review: the stored delta is applied unchanged and the change is
	// marked applied, atomically.
	ClearFrozenChange(changeID string) (*RatingChange, error)

	GetIntegrityRecords(matchID string) ([]IntegrityRecord, error)
	GetLeaderboard() ([]LeaderboardEntry, error)

	Clear()
	ClearMatch(matchID string)
}
