package arena

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for the arena.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// MatchState is the lifecycle state of a match. Transitions only move
// forward: waiting -> active -> concluded.
type MatchState string

const (
	StateWaiting   MatchState = "WAITING"
	StateActive    MatchState = "ACTIVE"
	StateConcluded MatchState = "CONCLUDED"
)

// ClosureCause records which trigger won the race to conclude a match.
type ClosureCause string

const (
	CauseTimeout    ClosureCause = "TIMEOUT"
	CauseMutualDone ClosureCause = "MUTUAL_DONE"
)

// EvaluationStatus marks whether a submission's evaluation completed normally.
type EvaluationStatus string

const (
	EvalStatusPending EvaluationStatus = "PENDING"
	EvalStatusOK      EvaluationStatus = "OK"
	EvalStatusError   EvaluationStatus = "ERROR"
)

// EvaluationResult is the ordered, comparable result tuple produced by the
// evaluation pipeline. Immutable once produced.
type EvaluationResult struct {
	Status          EvaluationStatus `json:"status"`
	TestCaseScore   float64          `json:"test_case_score"`
	AIQualityScore  float64          `json:"ai_quality_score"`
	ComplexityScore float64          `json:"complexity_score"`
	PassedCases     int              `json:"passed_cases"`
	TotalCases      int              `json:"total_cases"`
}

// NoSubmissionResult is the sentinel scored for a player who never
// submitted. It loses on test case score to any passing opponent.
func NoSubmissionResult() EvaluationResult {
	return EvaluationResult{Status: EvalStatusOK, TestCaseScore: -1}
}

// IsNoSubmission reports whether the result is the zero-submission sentinel.
func (r EvaluationResult) IsNoSubmission() bool {
	return r.TestCaseScore < 0
}

// CodeSubmission is one code submission inside a match. The sequence number
// is assigned by the orchestrator and is strictly increasing per player.
type CodeSubmission struct {
	ID          string           `json:"id"`
	PlayerID    string           `json:"player_id"`
	Code        string           `json:"code"`
	Language    string           `json:"language"`
	Seq         int              `json:"seq"`
	SubmittedAt time.Time        `json:"submitted_at"`
	IsFinal     bool             `json:"is_final"`
	Result      EvaluationResult `json:"result"`
}

// PlayerSlot holds one participant's side of a match.
type PlayerSlot struct {
	PlayerID    string           `json:"player_id"`
	Done        bool             `json:"done"`
	Submissions []CodeSubmission `json:"submissions"`
	FinalResult EvaluationResult `json:"final_result"`
}

// MatchSnapshot is the immutable record of a match handed to external
// collaborators after conclusion.
type MatchSnapshot struct {
	ID          string       `json:"id"`
	ChallengeID string       `json:"challenge_id"`
	State       MatchState   `json:"state"`
	Cause       ClosureCause `json:"cause,omitempty"`
	PlayerA     PlayerSlot   `json:"player_a"`
	PlayerB     PlayerSlot   `json:"player_b"`
	WinnerID    string       `json:"winner_id,omitempty"`
	Draw        bool         `json:"draw"`
	StartedAt   time.Time    `json:"started_at"`
	Deadline    time.Time    `json:"deadline"`
	ConcludedAt time.Time    `json:"concluded_at"`
}

// IntegrityRecord is the append-only audit record of one match's anti-cheat
// analysis for one player.
type IntegrityRecord struct {
	ID             string    `json:"id"`
	MatchID        string    `json:"match_id"`
	PlayerID       string    `json:"player_id"`
	Stylometry     float64   `json:"stylometry_score"`
	LLMProbability float64   `json:"llm_probability_score"`
	Behavioral     float64   `json:"behavioral_anomaly_score"`
	Overall        float64   `json:"overall_cheat_probability"`
	Action         string    `json:"action"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultRating and DefaultConfidence seed new players.
const (
	DefaultRating     = 1200
	DefaultConfidence = 100.0
)

// RatingChangeStatus marks whether a computed rating delta was applied or
// withheld pending manual review.
type RatingChangeStatus string

const (
	RatingApplied RatingChangeStatus = "APPLIED"
	RatingFrozen  RatingChangeStatus = "FROZEN"
)

// RatingChange is the record of one player's rating mutation for one match.
// A frozen change keeps its delta and can be re-admitted unchanged later.
type RatingChange struct {
	ID        string             `json:"id"`
	MatchID   string             `json:"match_id"`
	PlayerID  string             `json:"player_id"`
	OldRating int                `json:"old_rating"`
	NewRating int                `json:"new_rating"`
	Status    RatingChangeStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	ClearedAt *int64             `json:"cleared_at,omitempty"`
}

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Rating            int     `json:"rating"`
	RatingConfidence  float64 `json:"rating_confidence"`
	CleanMatches      int     `json:"clean_matches"`
	SuspiciousMatches int     `json:"suspicious_matches"`
	LastFlaggedAt     *int64  `json:"last_flagged_at,omitempty"`
	MatchesPlayed     int     `json:"matches_played"`
	MatchesWon        int     `json:"matches_won"`
	MatchesLost       int     `json:"matches_lost"`
	MatchesDrawn      int     `json:"matches_drawn"`
}

// LeaderboardEntry is one row of the rating leaderboard.
type LeaderboardEntry struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	Rating        int     `json:"rating"`
	MatchesPlayed int     `json:"matches_played"`
	MatchesWon    int     `json:"matches_won"`
	WinPercentage float64 `json:"win_percentage"`
}

// ConclusionRecord bundles everything committed together when a match
// concludes: the snapshot, the integrity audit rows, and the two rating
// changes. The store writes it in a single transaction.
type ConclusionRecord struct {
	Snapshot  MatchSnapshot
	Integrity []IntegrityRecord
	Changes   []RatingChange
}
