package arena

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new ArenaStore.
func New(db *sql.DB) ArenaStore {
	return &store{
		db: db,
	}
}

// UpsertPlayers inserts or updates players in a single transaction. Rating
// and integrity columns are only seeded on insert; they are owned by the
// conclusion path and must not be clobbered by a profile refresh. An empty
// name never overwrites a stored one.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, rating, rating_confidence)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = COALESCE(NULLIF(excluded.name, ''), name);
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		rating := p.Rating
		if rating == 0 {
			rating = DefaultRating
		}
		confidence := p.RatingConfidence
		if confidence == 0 {
			confidence = DefaultConfidence
		}
		if _, err := stmt.Exec(p.ID, p.Name, rating, confidence); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetPlayer returns a single player, or nil when unknown.
func (s *store) GetPlayer(playerID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(playerSelect+" WHERE id = ?", playerID)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlayers returns the players matching the given ids.
func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return nil, nil
	}

	query := playerSelect + " WHERE id IN (?" + strings.Repeat(",?", len(playerIDs)-1) + ")"
	args := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// GetAllPlayers returns every player ordered by rating.
func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(playerSelect + " ORDER BY rating DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// IsKnownPlayer reports whether the player exists in the store.
func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow("SELECT 1 FROM players WHERE id = ?", playerID).Scan(&one)
	return err == nil
}

// RecordConclusion writes the match snapshot, integrity rows, rating changes
// and player updates in one transaction. Either everything lands or nothing
// does; readers never observe a concluded match without its rating outcome.
func (s *store) RecordConclusion(rec *ConclusionRecord, players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	snap := rec.Snapshot
	slotAJSON, err := json.Marshal(snap.PlayerA)
	if err != nil {
		tx.Rollback()
		return err
	}
	slotBJSON, err := json.Marshal(snap.PlayerB)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO matches (id, challenge_id, state, cause, player_a_id, player_b_id, slot_a_json, slot_b_json, winner_id, draw, started_at, deadline, concluded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING;
	`, snap.ID, snap.ChallengeID, snap.State, snap.Cause, snap.PlayerA.PlayerID, snap.PlayerB.PlayerID,
		slotAJSON, slotBJSON, snap.WinnerID, snap.Draw, snap.StartedAt.Unix(), snap.Deadline.Unix(), snap.ConcludedAt.Unix())
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, ir := range rec.Integrity {
		_, err = tx.Exec(`
			INSERT INTO integrity_analyses (id, match_id, player_id, stylometry, llm_probability, behavioral, overall, action, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, ir.ID, ir.MatchID, ir.PlayerID, ir.Stylometry, ir.LLMProbability, ir.Behavioral, ir.Overall, ir.Action, ir.CreatedAt.Unix())
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	for _, rc := range rec.Changes {
		_, err = tx.Exec(`
			INSERT INTO rating_changes (id, match_id, player_id, old_rating, new_rating, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?);
		`, rc.ID, rc.MatchID, rc.PlayerID, rc.OldRating, rc.NewRating, rc.Status, rc.CreatedAt.Unix())
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	for _, p := range players {
		_, err = tx.Exec(`
			UPDATE players SET
				rating = ?,
				rating_confidence = ?,
				clean_matches = ?,
				suspicious_matches = ?,
				last_flagged_at = ?,
				matches_played = ?,
				matches_won = ?,
				matches_lost = ?,
				matches_drawn = ?
			WHERE id = ?;
		`, p.Rating, p.RatingConfidence, p.CleanMatches, p.SuspiciousMatches, p.LastFlaggedAt,
			p.MatchesPlayed, p.MatchesWon, p.MatchesLost, p.MatchesDrawn, p.ID)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetMatch returns a concluded match snapshot by id.
func (s *store) GetMatch(matchID string) (*MatchSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(matchSelect+" WHERE id = ?", matchID)
	snap, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return snap, err
}

// GetAllMatches returns every stored match snapshot, newest first.
func (s *store) GetAllMatches() ([]*MatchSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(matchSelect + " ORDER BY concluded_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*MatchSnapshot
	for rows.Next() {
		snap, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, snap)
	}
	return matches, rows.Err()
}

// GetFrozenChanges returns every rating change still awaiting review.
func (s *store) GetFrozenChanges() ([]RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, match_id, player_id, old_rating, new_rating, status, created_at, cleared_at
		FROM rating_changes
		WHERE status = ?
	`, RatingFrozen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []RatingChange
	for rows.Next() {
		rc, err := scanChange(rows)
		if err != nil {
			log.Error("Failed to scan rating change row", "error", err)
			continue
		}
		changes = append(changes, *rc)
	}
	return changes, rows.Err()
}

// ClearFrozenChange applies a frozen rating change after manual review. The
// stored delta is applied to the player's current rating unchanged, and the
// change flips to applied, in one transaction. Clearing an already-applied
// change is an error.
func (s *store) ClearFrozenChange(changeID string) (*RatingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`
		SELECT id, match_id, player_id, old_rating, new_rating, status, created_at, cleared_at
		FROM rating_changes
		WHERE id = ?
	`, changeID)
	rc, err := scanChange(row)
	if err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrChangeNotFound, changeID)
		}
		return nil, err
	}
	if rc.Status != RatingFrozen {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %s", ErrChangeNotFrozen, changeID)
	}

	delta := rc.NewRating - rc.OldRating
	now := time.Now()
	if _, err := tx.Exec("UPDATE players SET rating = rating + ? WHERE id = ?", delta, rc.PlayerID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := tx.Exec("UPDATE rating_changes SET status = ?, cleared_at = ? WHERE id = ?", RatingApplied, now.Unix(), changeID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	rc.Status = RatingApplied
	cleared := now.Unix()
	rc.ClearedAt = &cleared
	log.Info("Re-admitted frozen rating change", "changeID", changeID, "playerID", rc.PlayerID, "delta", delta)
	return rc, nil
}

// GetIntegrityRecords returns the audit rows for a match.
func (s *store) GetIntegrityRecords(matchID string) ([]IntegrityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, match_id, player_id, stylometry, llm_probability, behavioral, overall, action, created_at
		FROM integrity_analyses
		WHERE match_id = ?
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []IntegrityRecord
	for rows.Next() {
		var ir IntegrityRecord
		var createdAt int64
		if err := rows.Scan(&ir.ID, &ir.MatchID, &ir.PlayerID, &ir.Stylometry, &ir.LLMProbability, &ir.Behavioral, &ir.Overall, &ir.Action, &createdAt); err != nil {
			log.Error("Failed to scan integrity row", "error", err)
			continue
		}
		ir.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, ir)
	}
	return records, rows.Err()
}

// GetLeaderboard returns players ordered by rating with win percentages.
func (s *store) GetLeaderboard() ([]LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, rating, matches_played, matches_won
		FROM players
		WHERE matches_played > 0
		ORDER BY rating DESC, matches_won DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Rating, &e.MatchesPlayed, &e.MatchesWon); err != nil {
			log.Error("Failed to scan leaderboard row", "error", err)
			continue
		}
		if e.MatchesPlayed > 0 {
			e.WinPercentage = float64(e.MatchesWon) / float64(e.MatchesPlayed) * 100
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear wipes every table. Test and ops escape hatch.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"rating_changes", "integrity_analyses", "matches", "players"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
		}
	}
}

// ClearMatch removes one match and its dependent records.
func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{
		"DELETE FROM rating_changes WHERE match_id = ?",
		"DELETE FROM integrity_analyses WHERE match_id = ?",
		"DELETE FROM matches WHERE id = ?",
	} {
		if _, err := s.db.Exec(stmt, matchID); err != nil {
			log.Error("Failed to clear match", "matchID", matchID, "error", err)
		}
	}
}

const playerSelect = `
	SELECT id, name, rating, rating_confidence, clean_matches, suspicious_matches, last_flagged_at, matches_played, matches_won, matches_lost, matches_drawn
	FROM players`

const matchSelect = `
	SELECT id, challenge_id, state, cause, slot_a_json, slot_b_json, winner_id, draw, started_at, deadline, concluded_at
	FROM matches`

func scanPlayer(scanner interface{ Scan(...any) error }) (*PlayerInfo, error) {
	var p PlayerInfo
	var name sql.NullString
	var lastFlagged sql.NullInt64
	err := scanner.Scan(&p.ID, &name, &p.Rating, &p.RatingConfidence, &p.CleanMatches, &p.SuspiciousMatches, &lastFlagged,
		&p.MatchesPlayed, &p.MatchesWon, &p.MatchesLost, &p.MatchesDrawn)
	if err != nil {
		return nil, err
	}
	p.Name = name.String
	if lastFlagged.Valid {
		p.LastFlaggedAt = &lastFlagged.Int64
	}
	return &p, nil
}

func scanMatch(scanner interface{ Scan(...any) error }) (*MatchSnapshot, error) {
	var snap MatchSnapshot
	var slotAJSON, slotBJSON string
	var winnerID, cause sql.NullString
	var startedAt, deadline, concludedAt int64

	err := scanner.Scan(&snap.ID, &snap.ChallengeID, &snap.State, &cause, &slotAJSON, &slotBJSON, &winnerID, &snap.Draw, &startedAt, &deadline, &concludedAt)
	if err != nil {
		return nil, err
	}
	snap.Cause = ClosureCause(cause.String)
	snap.WinnerID = winnerID.String
	snap.StartedAt = time.Unix(startedAt, 0)
	snap.Deadline = time.Unix(deadline, 0)
	snap.ConcludedAt = time.Unix(concludedAt, 0)
	if err := json.Unmarshal([]byte(slotAJSON), &snap.PlayerA); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(slotBJSON), &snap.PlayerB); err != nil {
		return nil, err
	}
	return &snap, nil
}

func scanChange(scanner interface{ Scan(...any) error }) (*RatingChange, error) {
	var rc RatingChange
	var createdAt int64
	var clearedAt sql.NullInt64
	err := scanner.Scan(&rc.ID, &rc.MatchID, &rc.PlayerID, &rc.OldRating, &rc.NewRating, &rc.Status, &createdAt, &clearedAt)
	if err != nil {
		return nil, err
	}
	rc.CreatedAt = time.Unix(createdAt, 0)
	if clearedAt.Valid {
		rc.ClearedAt = &clearedAt.Int64
	}
	return &rc, nil
}
