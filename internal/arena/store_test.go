package arena_test

import (
	"testing"
	"time"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) arena.ArenaStore {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return arena.New(db)
}

func seedPlayers(t *testing.T, store arena.ArenaStore, ids ...string) {
	t.Helper()
	players := make([]arena.PlayerInfo, 0, len(ids))
	for _, id := range ids {
		players = append(players, arena.PlayerInfo{ID: id, Name: id, Rating: arena.DefaultRating, RatingConfidence: arena.DefaultConfidence})
	}
	require.NoError(t, store.UpsertPlayers(players))
}

func testConclusion(matchID, winner string) *arena.ConclusionRecord {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &arena.ConclusionRecord{
		Snapshot: arena.MatchSnapshot{
			ID:          matchID,
			ChallengeID: "challenge-1",
			State:       arena.StateConcluded,
			Cause:       arena.CauseMutualDone,
			PlayerA:     arena.PlayerSlot{PlayerID: "alice", Done: true},
			PlayerB:     arena.PlayerSlot{PlayerID: "bob", Done: true},
			WinnerID:    winner,
			StartedAt:   now,
			Deadline:    now.Add(time.Hour),
			ConcludedAt: now.Add(30 * time.Minute),
		},
		Integrity: []arena.IntegrityRecord{
			{ID: matchID + "-ia", MatchID: matchID, PlayerID: "alice", Overall: 10, Action: "none", CreatedAt: now},
			{ID: matchID + "-ib", MatchID: matchID, PlayerID: "bob", Overall: 90, Action: "hard_flag", CreatedAt: now},
		},
		Changes: []arena.RatingChange{
			{ID: matchID + "-ca", MatchID: matchID, PlayerID: "alice", OldRating: 1200, NewRating: 1216, Status: arena.RatingApplied, CreatedAt: now},
			{ID: matchID + "-cb", MatchID: matchID, PlayerID: "bob", OldRating: 1200, NewRating: 1184, Status: arena.RatingFrozen, CreatedAt: now},
		},
	}
}

func TestUpsertPlayers(t *testing.T) {
	t.Run("should insert players with default rating fields", func(t *testing.T) {
		store := newTestStore(t)
		seedPlayers(t, store, "alice")

		p, err := store.GetPlayer("alice")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, arena.DefaultRating, p.Rating)
		assert.Equal(t, arena.DefaultConfidence, p.RatingConfidence)
		assert.True(t, store.IsKnownPlayer("alice"))
		assert.False(t, store.IsKnownPlayer("mallory"))
	})

	t.Run("should keep existing ratings on re-upsert", func(t *testing.T) {
		store := newTestStore(t)
		seedPlayers(t, store, "alice", "bob")

		rec := testConclusion("m1", "alice")
		players := []arena.PlayerInfo{
			{ID: "alice", Name: "alice", Rating: 1216, RatingConfidence: 100, MatchesPlayed: 1, MatchesWon: 1},
			{ID: "bob", Name: "bob", Rating: 1200, RatingConfidence: 95, MatchesPlayed: 1, MatchesLost: 1},
		}
		require.NoError(t, store.RecordConclusion(rec, players))

		// Re-joining the queue must not reset the rating.
		seedPlayers(t, store, "alice")
		p, err := store.GetPlayer("alice")
		require.NoError(t, err)
		assert.Equal(t, 1216, p.Rating)
	})

	t.Run("should keep the stored name on a name-less re-upsert", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.UpsertPlayers([]arena.PlayerInfo{{ID: "alice", Name: "Alice A", Rating: 1300}}))

		// Match creation upserts bare ids with no profile data.
		require.NoError(t, store.UpsertPlayers([]arena.PlayerInfo{{ID: "alice"}}))

		p, err := store.GetPlayer("alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice A", p.Name)
		assert.Equal(t, 1300, p.Rating)

		// A real profile refresh still updates the name.
		require.NoError(t, store.UpsertPlayers([]arena.PlayerInfo{{ID: "alice", Name: "Alice B"}}))
		p, err = store.GetPlayer("alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice B", p.Name)
	})
}

func TestRecordConclusion(t *testing.T) {
	t.Run("should persist match, integrity rows, changes and players together", func(t *testing.T) {
		store := newTestStore(t)
		seedPlayers(t, store, "alice", "bob")

		rec := testConclusion("m1", "alice")
		players := []arena.PlayerInfo{
			{ID: "alice", Rating: 1216, RatingConfidence: 100, CleanMatches: 1, MatchesPlayed: 1, MatchesWon: 1},
			{ID: "bob", Rating: 1200, RatingConfidence: 95, SuspiciousMatches: 1, MatchesPlayed: 1, MatchesLost: 1},
		}
		require.NoError(t, store.RecordConclusion(rec, players))

		snap, err := store.GetMatch("m1")
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, arena.StateConcluded, snap.State)
		assert.Equal(t, "alice", snap.WinnerID)
		assert.Equal(t, "alice", snap.PlayerA.PlayerID)

		integrity, err := store.GetIntegrityRecords("m1")
		require.NoError(t, err)
		assert.Len(t, integrity, 2)

		alice, err := store.GetPlayer("alice")
		require.NoError(t, err)
		assert.Equal(t, 1216, alice.Rating)
		assert.Equal(t, 1, alice.MatchesWon)

		// Bob's change is frozen: his stored rating must be unchanged.
		bob, err := store.GetPlayer("bob")
		require.NoError(t, err)
		assert.Equal(t, 1200, bob.Rating)
		assert.Equal(t, 1, bob.SuspiciousMatches)
	})

	t.Run("should ignore a duplicate conclusion for the same match", func(t *testing.T) {
		store := newTestStore(t)
		seedPlayers(t, store, "alice", "bob")

		rec := testConclusion("m1", "alice")
		require.NoError(t, store.RecordConclusion(rec, nil))

		matches, err := store.GetAllMatches()
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestClearFrozenChange(t *testing.T) {
	t.Run("should apply the stored delta and flip the status atomically", func(t *testing.T) {
		store := newTestStore(t)
		seedPlayers(t, store, "alice", "bob")
		require.NoError(t, store.RecordConclusion(testConclusion("m1", "alice"), nil))

		frozen, err := store.GetFrozenChanges()
		require.NoError(t, err)
		require.Len(t, frozen, 1)
		assert.Equal(t, "bob", frozen[0].PlayerID)

		cleared, err := store.ClearFrozenChange(frozen[0].ID)
		require.NoError(t, err)
		assert.Equal(t, arena.RatingApplied, cleared.Status)
		require.NotNil(t, cleared.ClearedAt)

		// The frozen delta (-16) lands on the current rating.
		bob, err := store.GetPlayer("bob")
		require.NoError(t, err)
		assert.Equal(t, 1184, bob.Rating)

		frozen, err = store.GetFrozenChanges()
		require.NoError(t, err)
		assert.Empty(t, frozen)
	})

	t.Run("should refuse to clear an applied change twice", func(t *testing.T) {
		store := newTestStore(t)
		seedPlayers(t, store, "alice", "bob")
		require.NoError(t, store.RecordConclusion(testConclusion("m1", "alice"), nil))

		frozen, err := store.GetFrozenChanges()
		require.NoError(t, err)
		require.Len(t, frozen, 1)

		_, err = store.ClearFrozenChange(frozen[0].ID)
		require.NoError(t, err)
		_, err = store.ClearFrozenChange(frozen[0].ID)
		assert.ErrorIs(t, err, arena.ErrChangeNotFrozen)
	})

	t.Run("should error for an unknown change", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.ClearFrozenChange("nope")
		assert.ErrorIs(t, err, arena.ErrChangeNotFound)
	})
}

func TestGetLeaderboard(t *testing.T) {
	store := newTestStore(t)
	seedPlayers(t, store, "alice", "bob", "carol")

	players := []arena.PlayerInfo{
		{ID: "alice", Rating: 1300, RatingConfidence: 100, MatchesPlayed: 4, MatchesWon: 3, MatchesLost: 1},
		{ID: "bob", Rating: 1250, RatingConfidence: 100, MatchesPlayed: 4, MatchesWon: 2, MatchesLost: 2},
		{ID: "carol", Rating: 1100, RatingConfidence: 100, MatchesPlayed: 2, MatchesLost: 2},
	}
	require.NoError(t, store.RecordConclusion(testConclusion("m1", "alice"), players))

	entries, err := store.GetLeaderboard()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alice", entries[0].PlayerID)
	assert.Equal(t, 1300, entries[0].Rating)
	assert.InDelta(t, 75.0, entries[0].WinPercentage, 0.01)
	assert.Equal(t, "carol", entries[2].PlayerID)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	seedPlayers(t, store, "alice", "bob")
	require.NoError(t, store.RecordConclusion(testConclusion("m1", "alice"), nil))

	store.ClearMatch("m1")
	snap, err := store.GetMatch("m1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	store.Clear()
	assert.False(t, store.IsKnownPlayer("alice"))
}
