package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		ProjectID:     getEnv("GCP_PROJECT"),
		Slack: SlackConfig{
			Token:           getEnv("SLACK_BOT_TOKEN"),
			ReviewChannelID: getEnv("SLACK_REVIEW_CHANNEL_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		Services: ServicesConfig{
			ExecutorURL:  getEnv("EXECUTOR_URL"),
			ScorerURL:    getEnv("SCORER_URL"),
			IntegrityURL: getEnv("INTEGRITY_URL"),
			GeneratorURL: getEnv("GENERATOR_URL"),
		},
		Arena:      defaultArena(),
		Matchmaker: defaultMatchmaker(),
	}
	if secs := envSeconds("DEFAULT_TIME_LIMIT_SECONDS"); secs > 0 {
		cfg.Arena.DefaultTimeLimit = secs
	}
	if secs := envSeconds("CLOSURE_GRACE_SECONDS"); secs > 0 {
		cfg.Arena.ClosureGrace = secs
	}
	if secs := envSeconds("EVAL_TIMEOUT_SECONDS"); secs > 0 {
		cfg.Arena.EvalTimeout = secs
	}
	return cfg
}

func defaultArena() ArenaConfig {
	return ArenaConfig{
		DefaultTimeLimit: 60 * time.Second,
		MinTimeLimit:     30 * time.Second,
		MaxTimeLimit:     120 * time.Second,
		EvalTimeout:      15 * time.Second,
		ClosureGrace:     10 * time.Second,
	}
}

func defaultMatchmaker() MatchmakerConfig {
	return MatchmakerConfig{
		InitialWindow: 50,
		WidenStep:     50,
		WidenEvery:    10 * time.Second,
		QueueTimeout:  60 * time.Second,
	}
}

func envSeconds(key string) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		log.Warn("Ignoring invalid duration env var", "key", key, "value", value)
		return 0
	}
	return time.Duration(secs) * time.Second
}
