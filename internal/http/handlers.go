package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/matchmaker"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			log.Info("Successfully cleared match from store", "matchID", matchID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

func (s *Server) QueueJoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			http.Error(w, "Missing 'playerID' parameter", http.StatusBadRequest)
			return
		}
		difficulty := r.URL.Query().Get("difficulty")
		if difficulty == "" {
			difficulty = "medium"
		}

		ticket, err := s.Matchmaker.Join(playerID, difficulty)
		if err != nil {
			if errors.Is(err, matchmaker.ErrAlreadyQueued) {
				http.Error(w, "Player already queued", http.StatusConflict)
				return
			}
			log.Error("Failed to join queue", "playerID", playerID, "error", err)
			http.Error(w, "Failed to join queue", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, ticket)
	}
}

func (s *Server) QueueLeaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			http.Error(w, "Missing 'playerID' parameter", http.StatusBadRequest)
			return
		}
		s.Matchmaker.Leave(playerID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Left queue")
	}
}

// createMatchRequest is the payload for direct match creation, bypassing the
// queue. Used for private matches and testing.
type createMatchRequest struct {
	PlayerA          string `json:"player_a"`
	PlayerB          string `json:"player_b"`
	Difficulty       string `json:"difficulty"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req createMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.PlayerA == "" || req.PlayerB == "" || req.PlayerA == req.PlayerB {
			http.Error(w, "Two distinct players required", http.StatusBadRequest)
			return
		}
		if req.Difficulty == "" {
			req.Difficulty = "medium"
		}

		ch, err := s.Generator.GenerateChallenge(r.Context(), req.Difficulty)
		if err != nil {
			log.Error("Failed to generate challenge", "error", err)
			http.Error(w, "Failed to generate challenge", http.StatusBadGateway)
			return
		}

		snap, err := s.Orchestrator.CreateMatch(req.PlayerA, req.PlayerB, ch, time.Duration(req.TimeLimitSeconds)*time.Second, isDryRunFromContext(r))
		if err != nil {
			log.Error("Failed to create match", "error", err)
			http.Error(w, "Failed to create match", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusCreated, snap)
	}
}

// submitRequest is the payload for a code submission.
type submitRequest struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (s *Server) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.MatchID == "" || req.PlayerID == "" || req.Code == "" {
			http.Error(w, "Missing 'match_id', 'player_id' or 'code'", http.StatusBadRequest)
			return
		}

		sub, err := s.Orchestrator.Submit(req.MatchID, req.PlayerID, req.Code, req.Language)
		if err != nil {
			writeMatchError(w, err)
			return
		}
		respondJSON(w, http.StatusAccepted, sub)
	}
}

func (s *Server) SignalDoneHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		playerID := r.URL.Query().Get("playerID")
		if matchID == "" || playerID == "" {
			http.Error(w, "Missing 'matchID' or 'playerID' parameter", http.StatusBadRequest)
			return
		}

		if err := s.Orchestrator.SignalDone(matchID, playerID); err != nil {
			writeMatchError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Done signal recorded")
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("id")
		if matchID == "" {
			http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
			return
		}

		// Live matches are served from memory, concluded ones from the store.
		if snap, err := s.Orchestrator.LiveMatch(matchID); err == nil {
			respondJSON(w, http.StatusOK, snap)
			return
		}
		snap, err := s.Store.GetMatch(matchID)
		if err != nil {
			log.Error("Failed to get match", "matchID", matchID, "error", err)
			http.Error(w, "Failed to get match", http.StatusInternalServerError)
			return
		}
		if snap == nil {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("live") == "true" {
			respondJSON(w, http.StatusOK, s.Orchestrator.LiveMatches())
			return
		}
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			log.Error("Failed to get matches", "error", err)
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			log.Error("Failed to get players", "error", err)
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Store.GetLeaderboard()
		if err != nil {
			log.Error("Failed to get leaderboard", "error", err)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		limitStr := r.URL.Query().Get("limit")
		if limitStr != "" {
			if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}
		}
		respondJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) ListFrozenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changes, err := s.Store.GetFrozenChanges()
		if err != nil {
			log.Error("Failed to get frozen changes", "error", err)
			http.Error(w, "Failed to get frozen changes", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, changes)
	}
}

func (s *Server) ClearFrozenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		changeID := r.URL.Query().Get("changeID")
		if changeID == "" {
			http.Error(w, "Missing 'changeID' parameter", http.StatusBadRequest)
			return
		}

		change, err := s.Controller.ClearFrozen(changeID)
		if err != nil {
			switch {
			case errors.Is(err, arena.ErrChangeNotFound):
				http.Error(w, "Frozen change not found", http.StatusNotFound)
			case errors.Is(err, arena.ErrChangeNotFrozen):
				http.Error(w, "Change is not frozen", http.StatusConflict)
			default:
				log.Error("Failed to clear frozen change", "changeID", changeID, "error", err)
				http.Error(w, "Failed to clear frozen change", http.StatusInternalServerError)
			}
			return
		}
		log.Info("Frozen rating change cleared", "changeID", changeID, "playerID", change.PlayerID)
		if err := s.Alerter.SendClearanceNotice(*change, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send clearance notice", "changeID", changeID, "error", err)
		}
		respondJSON(w, http.StatusOK, change)
	}
}

func writeMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, arena.ErrMatchNotFound):
		http.Error(w, "Match not found", http.StatusNotFound)
	case errors.Is(err, arena.ErrInvalidState):
		http.Error(w, "Match is not active", http.StatusConflict)
	case errors.Is(err, arena.ErrNotParticipant):
		http.Error(w, "Player is not a participant", http.StatusForbidden)
	default:
		log.Error("Unexpected match operation error", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
