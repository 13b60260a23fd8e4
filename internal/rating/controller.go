package rating

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/integrity"
	"github.com/google/uuid"
)

// Controller owns the per-player rating and integrity profile update path.
// All mutations for a player pass through here, serialized per player id, so
// two matches finishing at once for the same player cannot lose updates.
type Controller struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewController creates a new Controller.
func NewController(store Store) *Controller {
	return &Controller{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Settlement is the outcome of settling one concluded match.
type Settlement struct {
	Players []arena.PlayerInfo
	Changes []arena.RatingChange
}

// Settle computes and commits the rating outcome of a concluded match. The
// record must already carry the snapshot and integrity rows; Settle fills in
// the rating changes and player updates and persists everything through the
// store in one transaction. A hard-flagged player's change is recorded
// frozen and their rating left untouched; every other change is applied.
func (c *Controller) Settle(rec *arena.ConclusionRecord, verdict arena.Verdict, actions map[string]integrity.Action) (*Settlement, error) {
	snap := rec.Snapshot
	idA, idB := snap.PlayerA.PlayerID, snap.PlayerB.PlayerID

	unlock := c.lockPlayers(idA, idB)
	defer unlock()

	players, err := c.store.GetPlayers([]string{idA, idB})
	if err != nil {
		return nil, fmt.Errorf("failed to load players for settlement: %w", err)
	}
	byID := make(map[string]*arena.PlayerInfo, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}
	playerA, playerB := byID[idA], byID[idB]
	if playerA == nil || playerB == nil {
		return nil, fmt.Errorf("players missing from store for match %s", snap.ID)
	}

	scoreA := 0.5
	switch verdict.WinnerID {
	case idA:
		scoreA = 1
	case idB:
		scoreA = 0
	}

	newA := Next(playerA.Rating, playerB.Rating, scoreA)
	newB := Next(playerB.Rating, playerA.Rating, 1-scoreA)

	now := time.Now()
	changeA := c.settlePlayer(playerA, newA, snap.ID, verdict, actions[idA], now)
	changeB := c.settlePlayer(playerB, newB, snap.ID, verdict, actions[idB], now)
	rec.Changes = []arena.RatingChange{changeA, changeB}

	updated := []arena.PlayerInfo{*playerA, *playerB}
	if err := c.store.RecordConclusion(rec, updated); err != nil {
		return nil, fmt.Errorf("failed to commit settlement for match %s: %w", snap.ID, err)
	}

	return &Settlement{Players: updated, Changes: rec.Changes}, nil
}

// settlePlayer applies the confidence rules and decides apply-or-freeze for
// one player. Confidence never decreases on a clean match and never
// increases on a flagged one; a single hard flag only freezes, it never
// permanently bars anyone.
func (c *Controller) settlePlayer(p *arena.PlayerInfo, newRating int, matchID string, verdict arena.Verdict, action integrity.Action, now time.Time) arena.RatingChange {
	change := arena.RatingChange{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		PlayerID:  p.ID,
		OldRating: p.Rating,
		NewRating: newRating,
		Status:    arena.RatingApplied,
		CreatedAt: now,
	}

	switch action {
	case integrity.ActionHardFlag:
		p.RatingConfidence = max(p.RatingConfidence-5, 0)
		p.SuspiciousMatches++
		flagged := now.Unix()
		p.LastFlaggedAt = &flagged
		change.Status = arena.RatingFrozen
		log.Warn("Rating change frozen pending review", "playerID", p.ID, "matchID", matchID, "confidence", p.RatingConfidence)
	case integrity.ActionSoftFlag:
		p.RatingConfidence = max(p.RatingConfidence-2, 0)
		p.SuspiciousMatches++
		log.Info("Soft integrity flag recorded", "playerID", p.ID, "matchID", matchID, "confidence", p.RatingConfidence)
	default:
		p.RatingConfidence = min(p.RatingConfidence+1, 100)
		p.CleanMatches++
	}

	if change.Status == arena.RatingApplied {
		p.Rating = newRating
	}

	p.MatchesPlayed++
	switch {
	case verdict.Draw:
		p.MatchesDrawn++
	case verdict.WinnerID == p.ID:
		p.MatchesWon++
	default:
		p.MatchesLost++
	}

	return change
}

// ClearFrozen re-admits a frozen rating change after manual review. The
// owning player's lock is held around the store call, so a clearance cannot
// interleave with a settlement for the same player and have either write
// overwrite the other.
func (c *Controller) ClearFrozen(changeID string) (*arena.RatingChange, error) {
	frozen, err := c.store.GetFrozenChanges()
	if err != nil {
		return nil, fmt.Errorf("failed to load frozen changes: %w", err)
	}
	for _, rc := range frozen {
		if rc.ID == changeID {
			l := c.lockFor(rc.PlayerID)
			l.Lock()
			defer l.Unlock()
			break
		}
	}
	return c.store.ClearFrozenChange(changeID)
}

// lockPlayers acquires the per-player locks in sorted id order and returns
// the matching unlock.
func (c *Controller) lockPlayers(ids ...string) func() {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		locks = append(locks, c.lockFor(id))
	}
	for _, l := range locks {
		l.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (c *Controller) lockFor(playerID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[playerID] = l
	}
	return l
}
