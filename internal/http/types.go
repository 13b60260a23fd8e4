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

type Server struct {
	Store          arena.ArenaStore
	Orchestrator   *orchestrator.Orchestrator
	Matchmaker     *matchmaker.Matchmaker
	Controller     *rating.Controller
	Generator      challenge.GeneratorClient
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Alerter        notifier.Alerter
	Router         *http.ServeMux
}
