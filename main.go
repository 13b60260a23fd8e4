package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/config"
	"github.com/codeclash/arena/internal/database"
	"github.com/codeclash/arena/internal/executor"
	server "github.com/codeclash/arena/internal/http"
	"github.com/codeclash/arena/internal/integrity"
	"github.com/codeclash/arena/internal/matchmaker"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier/feed"
	"github.com/codeclash/arena/internal/notifier/slack"
	"github.com/codeclash/arena/internal/orchestrator"
	"github.com/codeclash/arena/internal/pipeline"
	"github.com/codeclash/arena/internal/pubsub"
	"github.com/codeclash/arena/internal/rating"
	"github.com/codeclash/arena/internal/scoring"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	store := arena.New(db)
	metricsSvc := metrics.NewService()
	metricsStore := metrics.New(db)
	metricsHandler := metrics.NewMetricsHandler()

	executorClient := executor.NewClient(cfg.Services.ExecutorURL)
	scorerClient := scoring.NewClient(cfg.Services.ScorerURL)
	integrityClient := integrity.NewClient(cfg.Services.IntegrityURL)
	generatorClient := challenge.NewClient(cfg.Services.GeneratorURL)

	pubsubClient := pubsub.New(cfg.ProjectID)
	notif := feed.NewNotifier(pubsubClient, metricsSvc)
	alerter := slack.NewAlerter(cfg.Slack.Token, cfg.Slack.ReviewChannelID, metricsSvc, metricsStore)

	evaluator := pipeline.New(executorClient, scorerClient, metricsSvc)
	controller := rating.NewController(store)
	orch := orchestrator.New(evaluator, integrityClient, controller, store, notif, alerter, metricsSvc, cfg.Arena)
	mm := matchmaker.New(store, generatorClient, orch, notif, metricsSvc, cfg.Matchmaker)

	s := server.NewServer(
		store,
		orch,
		mm,
		controller,
		generatorClient,
		metricsSvc,
		metricsHandler,
		cfg,
		alerter,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// The matchmaker sweeps in the background for the life of the process.
	mmCtx, mmCancel := context.WithCancel(context.Background())
	defer mmCancel()
	go mm.Run(mmCtx)

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)
		mmCancel()

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
