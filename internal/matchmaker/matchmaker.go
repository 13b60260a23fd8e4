package matchmaker

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/config"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
)

// ErrAlreadyQueued is returned when a player joins while still waiting.
var ErrAlreadyQueued = errors.New("player already queued")

// New creates a new Matchmaker.
func New(players PlayerSource, generator challenge.GeneratorClient, creator MatchCreator, notif notifier.Notifier, m metrics.Metrics, cfg config.MatchmakerConfig) *Matchmaker {
	return &Matchmaker{
		players:   players,
		generator: generator,
		creator:   creator,
		notifier:  notif,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Join enqueues a player. The returned ticket is a copy; its live state
// advances as the sweep loop runs.
func (mm *Matchmaker) Join(playerID, difficulty string) (*Ticket, error) {
	rating := arena.DefaultRating
	if p, err := mm.players.GetPlayer(playerID); err != nil {
		log.Warn("Failed to look up player rating, using default", "playerID", playerID, "error", err)
	} else if p != nil {
		rating = p.Rating
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	for _, t := range mm.queue {
		if t.PlayerID == playerID && t.Status == TicketWaiting {
			return nil, ErrAlreadyQueued
		}
	}
	ticket := &Ticket{
		PlayerID:   playerID,
		Rating:     rating,
		Difficulty: difficulty,
		EnqueuedAt: mm.now(),
		Status:     TicketWaiting,
	}
	mm.queue = append(mm.queue, ticket)
	log.Info("Player joined queue", "playerID", playerID, "rating", rating, "difficulty", difficulty)

	out := *ticket
	return &out, nil
}

// Leave removes a waiting player from the queue. Removing a player who is
// not waiting is a no-op.
func (mm *Matchmaker) Leave(playerID string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for i, t := range mm.queue {
		if t.PlayerID == playerID && t.Status == TicketWaiting {
			mm.queue = append(mm.queue[:i], mm.queue[i+1:]...)
			log.Info("Player left queue", "playerID", playerID)
			return
		}
	}
}

// QueueLength returns the number of waiting tickets.
func (mm *Matchmaker) QueueLength() int {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return len(mm.queue)
}

// Run drives the sweep loop until the context is cancelled.
func (mm *Matchmaker) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mm.Sweep(ctx)
		}
	}
}

// Sweep runs one matchmaking pass: expire stale tickets, then pair the
// longest-waiting compatible players. Two tickets pair only when each falls
// inside the other's current window, so a widened window never drags a fresh
// ticket past its own tolerance.
func (mm *Matchmaker) Sweep(ctx context.Context) {
	now := mm.now()

	mm.mu.Lock()
	mm.expireLocked(now)
	pairs := mm.pairLocked(now)
	mm.mu.Unlock()

	for _, pair := range pairs {
		mm.launch(ctx, pair[0], pair[1])
	}
}

func (mm *Matchmaker) expireLocked(now time.Time) {
	kept := mm.queue[:0]
	for _, t := range mm.queue {
		if now.Sub(t.EnqueuedAt) < mm.cfg.QueueTimeout {
			kept = append(kept, t)
			continue
		}
		t.Status = TicketExpired
		mm.metrics.IncQueueTimeouts()
		log.Info("Queue ticket expired", "playerID", t.PlayerID, "waited", now.Sub(t.EnqueuedAt))
		if err := mm.notifier.SendQueueTimeout(t.PlayerID, false); err != nil {
			log.Error("Failed to send queue timeout event", "playerID", t.PlayerID, "error", err)
		}
	}
	mm.queue = kept
}

func (mm *Matchmaker) pairLocked(now time.Time) [][2]*Ticket {
	var pairs [][2]*Ticket
	for i, a := range mm.queue {
		if a.Status != TicketWaiting {
			continue
		}
		for _, b := range mm.queue[i+1:] {
			if b.Status != TicketWaiting || a.Difficulty != b.Difficulty {
				continue
			}
			if !mm.compatible(a, b, now) {
				continue
			}
			a.Status = TicketMatched
			b.Status = TicketMatched
			pairs = append(pairs, [2]*Ticket{a, b})
			break
		}
	}
	if len(pairs) > 0 {
		kept := mm.queue[:0]
		for _, t := range mm.queue {
			if t.Status == TicketWaiting {
				kept = append(kept, t)
			}
		}
		mm.queue = kept
	}
	return pairs
}

// compatible reports whether each ticket sits inside the other's window.
func (mm *Matchmaker) compatible(a, b *Ticket, now time.Time) bool {
	distance := a.Rating - b.Rating
	if distance < 0 {
		distance = -distance
	}
	return distance <= mm.window(a, now) && distance <= mm.window(b, now)
}

// window is the ticket's current acceptance distance, widened once per
// elapsed widening interval.
func (mm *Matchmaker) window(t *Ticket, now time.Time) int {
	steps := int(now.Sub(t.EnqueuedAt) / mm.cfg.WidenEvery)
	return mm.cfg.InitialWindow + steps*mm.cfg.WidenStep
}

func (mm *Matchmaker) launch(ctx context.Context, a, b *Ticket) {
	ch, err := mm.generator.GenerateChallenge(ctx, a.Difficulty)
	if err != nil {
		log.Error("Failed to generate challenge, requeueing players", "error", err)
		mm.requeue(a, b)
		return
	}
	timeLimit := time.Duration(ch.TimeLimitSeconds) * time.Second

	snap, err := mm.creator.CreateMatch(a.PlayerID, b.PlayerID, ch, timeLimit, false)
	if err != nil {
		log.Error("Failed to create match, requeueing players", "playerA", a.PlayerID, "playerB", b.PlayerID, "error", err)
		mm.requeue(a, b)
		return
	}
	a.MatchID = snap.ID
	b.MatchID = snap.ID
	log.Info("Players paired", "matchID", snap.ID, "playerA", a.PlayerID, "playerB", b.PlayerID,
		"ratingA", a.Rating, "ratingB", b.Rating)
}

// requeue puts failed pairings back in the queue with their original
// enqueue time, so their windows and timeouts keep counting.
func (mm *Matchmaker) requeue(tickets ...*Ticket) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for _, t := range tickets {
		t.Status = TicketWaiting
		mm.queue = append(mm.queue, t)
	}
}
