package orchestrator

import (
	"sync"
	"time"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/config"
	"github.com/codeclash/arena/internal/integrity"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
	"github.com/codeclash/arena/internal/pipeline"
	"github.com/codeclash/arena/internal/rating"
)

// Orchestrator owns every live match. Each match is an independent unit of
// work; no lock spans more than one match.
type Orchestrator struct {
	evaluator  pipeline.Evaluator
	features   integrity.FeatureSource
	controller *rating.Controller
	store      Store
	notifier   notifier.Notifier
	alerter    notifier.Alerter
	metrics    metrics.Metrics
	cfg        config.ArenaConfig

	mu      sync.RWMutex
	matches map[string]*liveMatch
}

// liveMatch is the in-memory state machine for one active match. It is owned
// exclusively by the orchestrator until conclusion; external collaborators
// only ever see immutable snapshots.
type liveMatch struct {
	mu sync.Mutex

	id          string
	challenge   *challenge.Challenge
	state       arena.MatchState
	cause       arena.ClosureCause
	startedAt   time.Time
	deadline    time.Time
	timer       *time.Timer
	slots       [2]*slot
	concludedAt time.Time
	winnerID    string
	draw        bool
	dryRun      bool

	// finalized is closed once settlement and event emission are done.
	finalized chan struct{}
}

// slot is one participant's side of a live match.
type slot struct {
	playerID string
	done     bool
	subs     []*liveSubmission
	// final is set exactly once, at the closure instant.
	final       *liveSubmission
	finalResult arena.EvaluationResult
}

// liveSubmission pairs a submission with the completion signal of its
// asynchronous evaluation.
type liveSubmission struct {
	sub   arena.CodeSubmission
	ready chan struct{}
}
