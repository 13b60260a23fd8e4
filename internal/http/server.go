package http

import (
	"net/http"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/config"
	"github.com/codeclash/arena/internal/matchmaker"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
	"github.com/codeclash/arena/internal/orchestrator"
	"github.com/codeclash/arena/internal/rating"
)

func NewServer(store arena.ArenaStore, orch *orchestrator.Orchestrator, mm *matchmaker.Matchmaker, controller *rating.Controller, generator challenge.GeneratorClient, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, alerter notifier.Alerter) *Server {
	server := &Server{
		Store:          store,
		Orchestrator:   orch,
		Matchmaker:     mm,
		Controller:     controller,
		Generator:      generator,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Alerter:        alerter,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/queue/join", Chain(s.QueueJoinHandler(), paramsMiddleware))
	s.Router.Handle("/queue/leave", Chain(s.QueueLeaveHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/match", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("/match/create", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/submit", Chain(s.SubmitHandler(), paramsMiddleware))
	s.Router.Handle("/done", Chain(s.SignalDoneHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/review/frozen", Chain(s.ListFrozenHandler(), paramsMiddleware))
	s.Router.Handle("/review/clear", Chain(s.ClearFrozenHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
