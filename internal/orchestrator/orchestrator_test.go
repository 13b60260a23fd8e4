package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/config"
	"github.com/codeclash/arena/internal/integrity"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
	"github.com/codeclash/arena/internal/pipeline"
	"github.com/codeclash/arena/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	orch      *Orchestrator
	evaluator *pipeline.MockEvaluator
	features  *integrity.MockSource
	store     *arena.MockStore
	notifier  *notifier.Mock
	metrics   *metrics.Mock
}

func testConfig() config.ArenaConfig {
	return config.ArenaConfig{
		DefaultTimeLimit: 200 * time.Millisecond,
		MinTimeLimit:     20 * time.Millisecond,
		MaxTimeLimit:     time.Second,
		EvalTimeout:      time.Second,
		ClosureGrace:     300 * time.Millisecond,
	}
}

func newFixture() *fixture {
	f := &fixture{
		evaluator: pipeline.NewMock(),
		features:  integrity.NewMock(),
		store:     arena.NewMock(),
		notifier:  notifier.NewMock(),
		metrics:   metrics.NewMock(),
	}
	f.store.GetPlayersFunc = func(playerIDs []string) ([]arena.PlayerInfo, error) {
		players := make([]arena.PlayerInfo, 0, len(playerIDs))
		for _, id := range playerIDs {
			players = append(players, arena.PlayerInfo{
				ID:               id,
				Rating:           arena.DefaultRating,
				RatingConfidence: arena.DefaultConfidence,
			})
		}
		return players, nil
	}
	controller := rating.NewController(f.store)
	f.orch = New(f.evaluator, f.features, controller, f.store, f.notifier, f.notifier, f.metrics, testConfig())
	return f
}

func testChallenge() *challenge.Challenge {
	return &challenge.Challenge{
		ID:    "challenge-1",
		Title: "Two Sum",
		TestCases: []challenge.TestCase{
			{Input: "1", Expected: "1"},
			{Input: "2", Expected: "2"},
			{Input: "3", Expected: "3", Hidden: true},
		},
	}
}

// resultWith returns a fixed evaluator that scores each player differently.
func resultWith(scores map[string]arena.EvaluationResult) func(context.Context, *arena.CodeSubmission, *challenge.Challenge) arena.EvaluationResult {
	return func(_ context.Context, sub *arena.CodeSubmission, _ *challenge.Challenge) arena.EvaluationResult {
		if r, ok := scores[sub.PlayerID]; ok {
			return r
		}
		return arena.EvaluationResult{Status: arena.EvalStatusOK}
	}
}

func conclude(t *testing.T, f *fixture, matchID string) *arena.ConclusionRecord {
	t.Helper()
	select {
	case <-f.orch.AwaitConclusion(matchID):
	case <-time.After(2 * time.Second):
		t.Fatal("match did not conclude in time")
	}
	require.Len(t, f.store.RecordConclusionCalls, 1)
	return f.store.RecordConclusionCalls[0].Rec
}

func TestCreateMatch(t *testing.T) {
	t.Run("should activate the match and start the deadline timer", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		assert.NotEmpty(t, snap.ID)
		assert.Equal(t, arena.StateActive, snap.State)
		assert.Equal(t, "alice", snap.PlayerA.PlayerID)
		assert.Equal(t, "bob", snap.PlayerB.PlayerID)
		assert.True(t, snap.Deadline.After(snap.StartedAt))

		require.Len(t, f.store.UpsertPlayersCalls, 1)
		assert.Equal(t, 1, f.metrics.MatchesStarted())
		require.Len(t, f.notifier.SendMatchStartedCalls, 1)
	})

	t.Run("should clamp the time limit to the configured bounds", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Hour, false)
		require.NoError(t, err)
		assert.Equal(t, time.Second, snap.Deadline.Sub(snap.StartedAt))

		snap, err = f.orch.CreateMatch("carol", "dave", testChallenge(), 0, false)
		require.NoError(t, err)
		assert.Equal(t, 200*time.Millisecond, snap.Deadline.Sub(snap.StartedAt))
	})
}

func TestSubmit(t *testing.T) {
	t.Run("should reject submissions for unknown matches", func(t *testing.T) {
		f := newFixture()
		_, err := f.orch.Submit("nope", "alice", "code", "go")
		assert.ErrorIs(t, err, arena.ErrMatchNotFound)
	})

	t.Run("should reject submissions from non-participants", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "mallory", "code", "go")
		assert.ErrorIs(t, err, arena.ErrNotParticipant)
	})

	t.Run("should assign strictly increasing sequence numbers per player", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		first, err := f.orch.Submit(snap.ID, "alice", "v1", "go")
		require.NoError(t, err)
		second, err := f.orch.Submit(snap.ID, "alice", "v2", "go")
		require.NoError(t, err)
		other, err := f.orch.Submit(snap.ID, "bob", "v1", "python")
		require.NoError(t, err)

		assert.Equal(t, 1, first.Seq)
		assert.Equal(t, 2, second.Seq)
		assert.Equal(t, 1, other.Seq)
		assert.True(t, second.SubmittedAt.After(first.SubmittedAt))
		assert.Equal(t, 3, f.metrics.Submissions())
	})

	t.Run("should notify both players on acceptance", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "code", "go")
		require.NoError(t, err)

		require.Len(t, f.notifier.SendSubmissionReceivedCalls, 1)
		assert.Equal(t, "alice", f.notifier.SendSubmissionReceivedCalls[0].PlayerID)
		require.Len(t, f.notifier.SendOpponentSubmittedCalls, 1)
		assert.Equal(t, "bob", f.notifier.SendOpponentSubmittedCalls[0].PlayerID)
	})

	t.Run("should reject submissions after conclusion", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))
		conclude(t, f, snap.ID)

		_, err = f.orch.Submit(snap.ID, "alice", "late", "go")
		assert.ErrorIs(t, err, arena.ErrMatchNotFound)
	})
}

func TestSignalDone(t *testing.T) {
	t.Run("should be idempotent per player", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))

		live, err := f.orch.LiveMatch(snap.ID)
		require.NoError(t, err)
		assert.Equal(t, arena.StateActive, live.State)
	})

	t.Run("should conclude with MUTUAL_DONE when both players finish", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))

		rec := conclude(t, f, snap.ID)
		assert.Equal(t, arena.StateConcluded, rec.Snapshot.State)
		assert.Equal(t, arena.CauseMutualDone, rec.Snapshot.Cause)
		assert.Equal(t, 1, f.metrics.MatchesConcluded(string(arena.CauseMutualDone)))
	})

	t.Run("should reject done signals from non-participants", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		assert.ErrorIs(t, f.orch.SignalDone(snap.ID, "mallory"), arena.ErrNotParticipant)
	})
}

func TestDeadlineClosure(t *testing.T) {
	t.Run("should conclude with TIMEOUT when the deadline fires", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), 20*time.Millisecond, false)
		require.NoError(t, err)

		rec := conclude(t, f, snap.ID)
		assert.Equal(t, arena.CauseTimeout, rec.Snapshot.Cause)
	})

	t.Run("should conclude exactly once under racing triggers", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), 20*time.Millisecond, false)
		require.NoError(t, err)

		// Race mutual done against the deadline timer.
		var wg sync.WaitGroup
		for _, p := range []string{"alice", "bob"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := f.orch.SignalDone(snap.ID, p)
				if err != nil {
					assert.True(t, errors.Is(err, arena.ErrInvalidState) || errors.Is(err, arena.ErrMatchNotFound))
				}
			}()
		}
		wg.Wait()

		conclude(t, f, snap.ID)
		require.Len(t, f.notifier.SendMatchConcludedCalls, 1)

		total := f.metrics.MatchesConcluded(string(arena.CauseTimeout)) +
			f.metrics.MatchesConcluded(string(arena.CauseMutualDone))
		assert.Equal(t, 1, total)
	})
}

func TestFinalization(t *testing.T) {
	t.Run("should score the last accepted submission per player", func(t *testing.T) {
		f := newFixture()
		f.evaluator.EvaluateFunc = func(_ context.Context, sub *arena.CodeSubmission, _ *challenge.Challenge) arena.EvaluationResult {
			// Later revisions score higher.
			return arena.EvaluationResult{Status: arena.EvalStatusOK, TestCaseScore: float64(sub.Seq * 30)}
		}
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "v1", "go")
		require.NoError(t, err)
		_, err = f.orch.Submit(snap.ID, "alice", "v2", "go")
		require.NoError(t, err)
		_, err = f.orch.Submit(snap.ID, "bob", "v1", "go")
		require.NoError(t, err)

		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))

		rec := conclude(t, f, snap.ID)
		assert.Equal(t, float64(60), rec.Snapshot.PlayerA.FinalResult.TestCaseScore)
		assert.Equal(t, float64(30), rec.Snapshot.PlayerB.FinalResult.TestCaseScore)
		assert.Equal(t, "alice", rec.Snapshot.WinnerID)

		// Only the final revisions are marked.
		subs := rec.Snapshot.PlayerA.Submissions
		require.Len(t, subs, 2)
		assert.False(t, subs[0].IsFinal)
		assert.True(t, subs[1].IsFinal)
	})

	t.Run("should let a zero-score submission beat no submission at all", func(t *testing.T) {
		f := newFixture()
		f.evaluator.EvaluateFunc = resultWith(map[string]arena.EvaluationResult{
			"alice": {Status: arena.EvalStatusOK, TestCaseScore: 0},
		})
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "broken but present", "go")
		require.NoError(t, err)
		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))

		rec := conclude(t, f, snap.ID)
		assert.Equal(t, "alice", rec.Snapshot.WinnerID)
		assert.False(t, rec.Snapshot.Draw)
		assert.True(t, rec.Snapshot.PlayerB.FinalResult.IsNoSubmission())
	})

	t.Run("should draw when neither player submits", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), 20*time.Millisecond, false)
		require.NoError(t, err)

		rec := conclude(t, f, snap.ID)
		assert.True(t, rec.Snapshot.Draw)
		assert.Empty(t, rec.Snapshot.WinnerID)
	})

	t.Run("should degrade an evaluation that misses the grace period", func(t *testing.T) {
		f := newFixture()
		block := make(chan struct{})
		f.evaluator.EvaluateFunc = func(ctx context.Context, sub *arena.CodeSubmission, _ *challenge.Challenge) arena.EvaluationResult {
			if sub.PlayerID == "bob" {
				<-block
			}
			return arena.EvaluationResult{Status: arena.EvalStatusOK, TestCaseScore: 100}
		}
		defer close(block)

		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "fast", "go")
		require.NoError(t, err)
		_, err = f.orch.Submit(snap.ID, "bob", "stuck", "go")
		require.NoError(t, err)

		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))

		rec := conclude(t, f, snap.ID)
		assert.Equal(t, arena.EvalStatusError, rec.Snapshot.PlayerB.FinalResult.Status)
		assert.Equal(t, "alice", rec.Snapshot.WinnerID)
	})

	t.Run("should remove the match from the live set after conclusion", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))
		conclude(t, f, snap.ID)

		_, err = f.orch.LiveMatch(snap.ID)
		assert.ErrorIs(t, err, arena.ErrMatchNotFound)
	})
}

func TestIntegrityAndSettlement(t *testing.T) {
	t.Run("should apply rating changes for clean matches", func(t *testing.T) {
		f := newFixture()
		f.evaluator.EvaluateFunc = resultWith(map[string]arena.EvaluationResult{
			"alice": {Status: arena.EvalStatusOK, TestCaseScore: 100},
			"bob":   {Status: arena.EvalStatusOK, TestCaseScore: 50},
		})
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "good", "go")
		require.NoError(t, err)
		_, err = f.orch.Submit(snap.ID, "bob", "half", "go")
		require.NoError(t, err)
		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))

		rec := conclude(t, f, snap.ID)
		require.Len(t, rec.Changes, 2)
		for _, change := range rec.Changes {
			assert.Equal(t, arena.RatingApplied, change.Status)
		}
		// Equal ratings, decisive result: winner gains K/2.
		assert.Len(t, f.notifier.SendRatingUpdatedCalls, 2)
		assert.Empty(t, f.notifier.SendRatingFrozenCalls)
		assert.Empty(t, f.notifier.SendIntegrityAlertCalls)
	})

	t.Run("should freeze only the hard-flagged player's change", func(t *testing.T) {
		f := newFixture()
		f.features.LLMProbabilityFunc = func(_ context.Context, code string) (float64, error) {
			if code == "suspicious" {
				return 100, nil
			}
			return 0, nil
		}
		f.features.StylometryDeviationFunc = func(_ context.Context, playerID, code string) (float64, error) {
			if code == "suspicious" {
				return 100, nil
			}
			return 0, nil
		}
		f.features.BehavioralAnomalyFunc = func(_ context.Context, playerID string, _ integrity.SubmissionMeta) (float64, error) {
			if playerID == "bob" {
				return 100, nil
			}
			return 0, nil
		}
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "honest", "go")
		require.NoError(t, err)
		_, err = f.orch.Submit(snap.ID, "bob", "suspicious", "go")
		require.NoError(t, err)
		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))

		rec := conclude(t, f, snap.ID)
		statuses := map[string]arena.RatingChangeStatus{}
		for _, change := range rec.Changes {
			statuses[change.PlayerID] = change.Status
		}
		assert.Equal(t, arena.RatingApplied, statuses["alice"])
		assert.Equal(t, arena.RatingFrozen, statuses["bob"])

		assert.Equal(t, 1, f.metrics.RatingFreezes())
		assert.Equal(t, 1, f.metrics.IntegrityFlags(string(integrity.ActionHardFlag)))
		require.Len(t, f.notifier.SendRatingFrozenCalls, 1)
		assert.Equal(t, "bob", f.notifier.SendRatingFrozenCalls[0].PlayerID)
		require.Len(t, f.notifier.SendFreezeNoticeCalls, 1)
		require.Len(t, f.notifier.SendIntegrityAlertCalls, 1)
	})

	t.Run("should degrade a failed feature source to a zero score", func(t *testing.T) {
		f := newFixture()
		f.features.LLMProbabilityFunc = func(_ context.Context, _ string) (float64, error) {
			return 0, assert.AnError
		}
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "code", "go")
		require.NoError(t, err)
		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))

		rec := conclude(t, f, snap.ID)
		require.Len(t, rec.Integrity, 1)
		assert.Equal(t, float64(0), rec.Integrity[0].LLMProbability)
		assert.Equal(t, string(integrity.ActionNone), rec.Integrity[0].Action)
	})

	t.Run("should emit the concluded event before any rating event", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, false)
		require.NoError(t, err)

		_, err = f.orch.Submit(snap.ID, "alice", "code", "go")
		require.NoError(t, err)
		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))
		conclude(t, f, snap.ID)

		concluded, updated := -1, -1
		for i, ev := range f.notifier.Events {
			switch ev {
			case "match_concluded":
				concluded = i
			case "rating_updated":
				if updated == -1 {
					updated = i
				}
			}
		}
		require.NotEqual(t, -1, concluded)
		require.NotEqual(t, -1, updated)
		assert.Less(t, concluded, updated)
	})

	t.Run("should skip settlement entirely in dry run mode", func(t *testing.T) {
		f := newFixture()
		snap, err := f.orch.CreateMatch("alice", "bob", testChallenge(), time.Minute, true)
		require.NoError(t, err)

		require.NoError(t, f.orch.SignalDone(snap.ID, "alice"))
		require.NoError(t, f.orch.SignalDone(snap.ID, "bob"))
		select {
		case <-f.orch.AwaitConclusion(snap.ID):
		case <-time.After(2 * time.Second):
			t.Fatal("match did not conclude in time")
		}

		assert.Empty(t, f.store.RecordConclusionCalls)
		assert.Empty(t, f.notifier.SendRatingUpdatedCalls)
		require.Len(t, f.notifier.SendMatchConcludedCalls, 1)
	})
}
