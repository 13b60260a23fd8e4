package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	ProjectID     string
	Slack         SlackConfig
	Turso         TursoConfig
	Services      ServicesConfig
	Arena         ArenaConfig
	Matchmaker    MatchmakerConfig
}

type SlackConfig struct {
	Token           string
	ReviewChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// ServicesConfig holds base URLs of the external collaborators.
type ServicesConfig struct {
	ExecutorURL  string
	ScorerURL    string
	IntegrityURL string
	GeneratorURL string
}

// ArenaConfig holds the match orchestration tunables.
type ArenaConfig struct {
	// DefaultTimeLimit is used when the matchmaker does not specify one.
	// Time limits are clamped to [MinTimeLimit, MaxTimeLimit].
	DefaultTimeLimit time.Duration
	MinTimeLimit     time.Duration
	MaxTimeLimit     time.Duration
	// EvalTimeout bounds a single submission's trip through the pipeline.
	EvalTimeout time.Duration
	// ClosureGrace bounds how long closure waits for in-flight final
	// evaluations before degrading them to error results.
	ClosureGrace time.Duration
}

// MatchmakerConfig holds the pairing tunables.
type MatchmakerConfig struct {
	// InitialWindow is the starting rating distance for a pairing.
	InitialWindow int
	// WidenStep is added to the window every WidenEvery while waiting.
	WidenStep  int
	WidenEvery time.Duration
	// QueueTimeout expires a ticket that never found an opponent.
	QueueTimeout time.Duration
}
