package orchestrator

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/config"
	"github.com/codeclash/arena/internal/integrity"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
	"github.com/codeclash/arena/internal/pipeline"
	"github.com/codeclash/arena/internal/rating"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// New creates a new Orchestrator.
func New(evaluator pipeline.Evaluator, features integrity.FeatureSource, controller *rating.Controller, store Store, notif notifier.Notifier, alerter notifier.Alerter, m metrics.Metrics, cfg config.ArenaConfig) *Orchestrator {
	return &Orchestrator{
		evaluator:  evaluator,
		features:   features,
		controller: controller,
		store:      store,
		notifier:   notif,
		alerter:    alerter,
		metrics:    m,
		cfg:        cfg,
		matches:    make(map[string]*liveMatch),
	}
}

// CreateMatch activates a new match between two players. The time limit is
// clamped to the configured bounds; zero means the default. The deadline
// timer starts immediately.
func (o *Orchestrator) CreateMatch(playerA, playerB string, ch *challenge.Challenge, timeLimit time.Duration, dryRun bool) (*arena.MatchSnapshot, error) {
	timeLimit = o.clampTimeLimit(timeLimit)

	// Players must exist before the conclusion record can reference them.
	err := o.store.UpsertPlayers([]arena.PlayerInfo{{ID: playerA}, {ID: playerB}})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m := &liveMatch{
		id:        uuid.NewString(),
		challenge: ch,
		state:     arena.StateActive,
		startedAt: now,
		deadline:  now.Add(timeLimit),
		slots: [2]*slot{
			{playerID: playerA},
			{playerID: playerB},
		},
		dryRun:    dryRun,
		finalized: make(chan struct{}),
	}
	m.timer = time.AfterFunc(timeLimit, func() {
		if m.tryClose(arena.CauseTimeout) {
			o.finalize(m)
		}
	})

	o.mu.Lock()
	o.matches[m.id] = m
	o.mu.Unlock()

	o.metrics.IncMatchesStarted()
	snap := m.snapshot()
	if err := o.notifier.SendMatchStarted(snap, dryRun); err != nil {
		log.Error("Failed to send match started event", "matchID", m.id, "error", err)
	}

	log.Info("Match started", "matchID", m.id, "playerA", playerA, "playerB", playerB,
		"challengeID", ch.ID, "timeLimit", timeLimit)
	return snap, nil
}

// Submit accepts a code submission for an active match. Acceptance is a fast
// serialized append; the evaluation is dispatched asynchronously and never
// blocks further submissions. A later submission does not cancel an earlier
// one still in flight.
func (o *Orchestrator) Submit(matchID, playerID, code, language string) (*arena.CodeSubmission, error) {
	m, err := o.live(matchID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.state != arena.StateActive {
		m.mu.Unlock()
		return nil, arena.ErrInvalidState
	}
	s := m.slotFor(playerID)
	if s == nil {
		m.mu.Unlock()
		return nil, arena.ErrNotParticipant
	}

	now := time.Now()
	if n := len(s.subs); n > 0 && !now.After(s.subs[n-1].sub.SubmittedAt) {
		// Submission timestamps are strictly increasing per player.
		now = s.subs[n-1].sub.SubmittedAt.Add(time.Microsecond)
	}
	ls := &liveSubmission{
		sub: arena.CodeSubmission{
			ID:          uuid.NewString(),
			PlayerID:    playerID,
			Code:        code,
			Language:    language,
			Seq:         len(s.subs) + 1,
			SubmittedAt: now,
			Result:      arena.EvaluationResult{Status: arena.EvalStatusPending},
		},
		ready: make(chan struct{}),
	}
	s.subs = append(s.subs, ls)
	opponent := m.opponentOf(playerID)
	accepted := ls.sub
	m.mu.Unlock()

	o.metrics.IncSubmissions()
	go o.evaluate(m, ls)

	if err := o.notifier.SendSubmissionReceived(m.id, playerID, accepted.Seq, m.dryRun); err != nil {
		log.Error("Failed to send submission received event", "matchID", m.id, "error", err)
	}
	if err := o.notifier.SendOpponentSubmitted(m.id, opponent, m.dryRun); err != nil {
		log.Error("Failed to send opponent submitted event", "matchID", m.id, "error", err)
	}

	log.Debug("Submission accepted", "matchID", m.id, "playerID", playerID, "seq", accepted.Seq)
	return &accepted, nil
}

// SignalDone marks a player as finished. It is idempotent; when both players
// are done the match concludes immediately.
func (o *Orchestrator) SignalDone(matchID, playerID string) error {
	m, err := o.live(matchID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.state != arena.StateActive {
		m.mu.Unlock()
		return arena.ErrInvalidState
	}
	s := m.slotFor(playerID)
	if s == nil {
		m.mu.Unlock()
		return arena.ErrNotParticipant
	}
	s.done = true
	bothDone := m.slots[0].done && m.slots[1].done
	m.mu.Unlock()

	log.Debug("Player signalled done", "matchID", m.id, "playerID", playerID, "bothDone", bothDone)

	if bothDone && m.tryClose(arena.CauseMutualDone) {
		go o.finalize(m)
	}
	return nil
}

// LiveMatch returns a snapshot of a live match.
func (o *Orchestrator) LiveMatch(matchID string) (*arena.MatchSnapshot, error) {
	m, err := o.live(matchID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(), nil
}

// LiveMatches returns snapshots of all live matches.
func (o *Orchestrator) LiveMatches() []*arena.MatchSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	snaps := make([]*arena.MatchSnapshot, 0, len(o.matches))
	for _, m := range o.matches {
		m.mu.Lock()
		snaps = append(snaps, m.snapshotLocked())
		m.mu.Unlock()
	}
	return snaps
}

// AwaitConclusion returns a channel closed once the match has concluded and
// its settlement is committed. Unknown ids get an already-closed channel.
func (o *Orchestrator) AwaitConclusion(matchID string) <-chan struct{} {
	o.mu.RLock()
	m, ok := o.matches[matchID]
	o.mu.RUnlock()
	if !ok {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return m.finalized
}

func (o *Orchestrator) live(matchID string) (*liveMatch, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	m, ok := o.matches[matchID]
	if !ok {
		return nil, arena.ErrMatchNotFound
	}
	return m, nil
}

func (o *Orchestrator) clampTimeLimit(timeLimit time.Duration) time.Duration {
	if timeLimit == 0 {
		timeLimit = o.cfg.DefaultTimeLimit
	}
	if timeLimit < o.cfg.MinTimeLimit {
		timeLimit = o.cfg.MinTimeLimit
	}
	if timeLimit > o.cfg.MaxTimeLimit {
		timeLimit = o.cfg.MaxTimeLimit
	}
	return timeLimit
}

// evaluate runs one submission through the pipeline and records the result.
// Results land even after conclusion, for informational display; scoring
// only ever reads the submission frozen as final at the closure instant.
func (o *Orchestrator) evaluate(m *liveMatch, ls *liveSubmission) {
	defer close(ls.ready)

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.EvalTimeout)
	defer cancel()

	start := time.Now()
	result := o.evaluator.Evaluate(ctx, &ls.sub, m.challenge)
	o.metrics.ObserveEvaluationDuration(time.Since(start).Seconds())

	m.mu.Lock()
	ls.sub.Result = result
	m.mu.Unlock()
}

// tryClose is the closure gate: a single compare-and-set transition consumed
// by whichever trigger observes the match still active. Late triggers are
// no-ops. The final submission per player is frozen here, at the closure
// instant.
func (m *liveMatch) tryClose(cause arena.ClosureCause) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != arena.StateActive {
		return false
	}
	m.state = arena.StateConcluded
	m.cause = cause
	m.concludedAt = time.Now()
	m.timer.Stop()

	for _, s := range m.slots {
		if n := len(s.subs); n > 0 {
			s.final = s.subs[n-1]
			s.final.sub.IsFinal = true
		}
	}
	return true
}

// finalize drives a concluded match through scoring, integrity analysis and
// settlement. It runs exactly once per match, in its own goroutine, and must
// always complete: every external failure degrades rather than aborts.
func (o *Orchestrator) finalize(m *liveMatch) {
	defer close(m.finalized)

	o.metrics.IncMatchesConcluded(string(m.cause))
	log.Info("Match concluded", "matchID", m.id, "cause", m.cause)

	o.awaitFinalEvaluations(m)

	m.mu.Lock()
	finals := [2]arena.EvaluationResult{}
	stamps := [2]time.Time{}
	for i, s := range m.slots {
		if s.final == nil {
			finals[i] = arena.NoSubmissionResult()
			continue
		}
		finals[i] = s.final.sub.Result
		stamps[i] = s.final.sub.SubmittedAt
		if finals[i].Status == arena.EvalStatusPending {
			// Evaluation missed the grace period; degrade to an error result.
			finals[i] = arena.EvaluationResult{Status: arena.EvalStatusError, TotalCases: m.challenge.TotalCases()}
			s.final.sub.Result = finals[i]
			log.Warn("Final evaluation missed grace period, degrading to error result",
				"matchID", m.id, "playerID", s.playerID)
		}
	}
	m.slots[0].finalResult = finals[0]
	m.slots[1].finalResult = finals[1]
	idA, idB := m.slots[0].playerID, m.slots[1].playerID
	m.mu.Unlock()

	verdict := arena.Resolve(idA, finals[0], stamps[0], idB, finals[1], stamps[1])
	log.Info("Winner resolved", "matchID", m.id, "winner", verdict.WinnerID, "draw", verdict.Draw, "decidedBy", verdict.DecidedBy)

	records, actions := o.analyzeIntegrity(m)

	m.mu.Lock()
	m.winnerID = verdict.WinnerID
	m.draw = verdict.Draw
	snap := m.snapshotLocked()
	m.mu.Unlock()

	rec := &arena.ConclusionRecord{Snapshot: *snap, Integrity: records}
	var settlement *rating.Settlement
	if m.dryRun {
		log.Info("[Dry Run] Would settle match", "matchID", m.id, "winner", verdict.WinnerID)
	} else {
		var err error
		settlement, err = o.controller.Settle(rec, verdict, actions)
		if err != nil {
			// The match is still concluded; only the rating outcome is lost.
			log.Error("Failed to settle match", "matchID", m.id, "error", err)
		}
	}

	o.emitConcluded(m, snap, settlement, records)

	o.mu.Lock()
	delete(o.matches, m.id)
	o.mu.Unlock()
}

// awaitFinalEvaluations blocks until both final submissions finished their
// trip through the pipeline, bounded by the closure grace period.
func (o *Orchestrator) awaitFinalEvaluations(m *liveMatch) {
	m.mu.Lock()
	pending := make([]*liveSubmission, 0, 2)
	for _, s := range m.slots {
		if s.final != nil {
			pending = append(pending, s.final)
		}
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.ClosureGrace)
	defer cancel()

	var g errgroup.Group
	for _, ls := range pending {
		g.Go(func() error {
			select {
			case <-ls.ready:
			case <-ctx.Done():
			}
			return nil
		})
	}
	g.Wait()
}

// analyzeIntegrity gathers the feature signals for each final submission and
// aggregates them, once per match. Feature source failures degrade to zero.
func (o *Orchestrator) analyzeIntegrity(m *liveMatch) ([]arena.IntegrityRecord, map[string]integrity.Action) {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.EvalTimeout)
	defer cancel()

	m.mu.Lock()
	type target struct {
		playerID string
		code     string
		meta     integrity.SubmissionMeta
	}
	targets := make([]target, 0, 2)
	for _, s := range m.slots {
		if s.final == nil {
			continue
		}
		targets = append(targets, target{
			playerID: s.playerID,
			code:     s.final.sub.Code,
			meta: integrity.SubmissionMeta{
				MatchID:         m.id,
				SubmissionCount: len(s.subs),
				FirstSubmitSecs: s.subs[0].sub.SubmittedAt.Sub(m.startedAt).Seconds(),
				FinalSubmitSecs: s.final.sub.SubmittedAt.Sub(m.startedAt).Seconds(),
				CodeLength:      len(s.final.sub.Code),
			},
		})
	}
	matchID := m.id
	m.mu.Unlock()

	records := make([]arena.IntegrityRecord, 0, len(targets))
	actions := make(map[string]integrity.Action, len(targets))
	for _, t := range targets {
		signals := integrity.Signals{}
		var err error
		if signals.Stylometry, err = o.features.StylometryDeviation(ctx, t.playerID, t.code); err != nil {
			log.Error("Stylometry source failed, degrading to zero", "matchID", matchID, "playerID", t.playerID, "error", err)
			signals.Stylometry = 0
		}
		if signals.LLMProbability, err = o.features.LLMProbability(ctx, t.code); err != nil {
			log.Error("LLM probability source failed, degrading to zero", "matchID", matchID, "playerID", t.playerID, "error", err)
			signals.LLMProbability = 0
		}
		if signals.Behavioral, err = o.features.BehavioralAnomaly(ctx, t.playerID, t.meta); err != nil {
			log.Error("Behavioral source failed, degrading to zero", "matchID", matchID, "playerID", t.playerID, "error", err)
			signals.Behavioral = 0
		}

		overall, action := integrity.Analyze(signals)
		actions[t.playerID] = action
		o.metrics.IncIntegrityFlags(string(action))
		if action == integrity.ActionHardFlag {
			o.metrics.IncRatingFreezes()
		}

		records = append(records, arena.IntegrityRecord{
			ID:             uuid.NewString(),
			MatchID:        matchID,
			PlayerID:       t.playerID,
			Stylometry:     signals.Stylometry,
			LLMProbability: signals.LLMProbability,
			Behavioral:     signals.Behavioral,
			Overall:        overall,
			Action:         string(action),
			CreatedAt:      time.Now(),
		})
		log.Info("Integrity analysis complete", "matchID", matchID, "playerID", t.playerID,
			"overall", overall, "action", action)
	}
	return records, actions
}

// emitConcluded publishes the terminal events for a match in causal order:
// the concluded snapshot first, then each player's rating outcome.
func (o *Orchestrator) emitConcluded(m *liveMatch, snap *arena.MatchSnapshot, settlement *rating.Settlement, records []arena.IntegrityRecord) {
	if err := o.notifier.SendMatchConcluded(snap, m.dryRun); err != nil {
		log.Error("Failed to send match concluded event", "matchID", m.id, "error", err)
	}

	for _, rec := range records {
		if rec.Action == string(integrity.ActionNone) {
			continue
		}
		if err := o.alerter.SendIntegrityAlert(rec, m.dryRun); err != nil {
			log.Error("Failed to send integrity alert", "matchID", m.id, "error", err)
		}
	}

	if settlement == nil {
		return
	}
	for _, change := range settlement.Changes {
		if change.Status == arena.RatingFrozen {
			if err := o.notifier.SendRatingFrozen(change, m.dryRun); err != nil {
				log.Error("Failed to send rating frozen event", "matchID", m.id, "error", err)
			}
			if err := o.alerter.SendFreezeNotice(change, m.dryRun); err != nil {
				log.Error("Failed to send freeze notice", "matchID", m.id, "error", err)
			}
			continue
		}
		if err := o.notifier.SendRatingUpdated(change, m.dryRun); err != nil {
			log.Error("Failed to send rating updated event", "matchID", m.id, "error", err)
		}
	}
}

func (m *liveMatch) slotFor(playerID string) *slot {
	for _, s := range m.slots {
		if s.playerID == playerID {
			return s
		}
	}
	return nil
}

func (m *liveMatch) opponentOf(playerID string) string {
	if m.slots[0].playerID == playerID {
		return m.slots[1].playerID
	}
	return m.slots[0].playerID
}

func (m *liveMatch) snapshot() *arena.MatchSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *liveMatch) snapshotLocked() *arena.MatchSnapshot {
	snap := &arena.MatchSnapshot{
		ID:          m.id,
		ChallengeID: m.challenge.ID,
		State:       m.state,
		Cause:       m.cause,
		WinnerID:    m.winnerID,
		Draw:        m.draw,
		StartedAt:   m.startedAt,
		Deadline:    m.deadline,
		ConcludedAt: m.concludedAt,
	}
	snap.PlayerA = m.slots[0].snapshot()
	snap.PlayerB = m.slots[1].snapshot()
	return snap
}

func (s *slot) snapshot() arena.PlayerSlot {
	out := arena.PlayerSlot{
		PlayerID:    s.playerID,
		Done:        s.done,
		FinalResult: s.finalResult,
		Submissions: make([]arena.CodeSubmission, 0, len(s.subs)),
	}
	for _, ls := range s.subs {
		out.Submissions = append(out.Submissions, ls.sub)
	}
	return out
}
