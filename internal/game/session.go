/*
Package game
File: session.go
Description:
    The Session is the single owner of an Engine and its scheduler.

    Architecture:
    - Run: one goroutine selecting over intents and the tick heartbeat, so
      every mutation is applied serially and to completion.
    - Do: how the API (or anything else) submits an intent and gets back
      the resulting View.
    - writeSnapshots: fire-and-forget persistence. The loop hands over the
      latest state through a one-slot channel; a stale pending snapshot is
      replaced, never queued behind.
*/

package game

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrSessionStopped is returned by Do once Run has returned.
var ErrSessionStopped = errors.New("game session stopped")

// DefaultTickInterval is the scheduler cadence (10 Hz).
const DefaultTickInterval = 100 * time.Millisecond

type intent struct {
	apply func(*Engine)
	reply chan View
}

// SessionConfig wires a Session's collaborators. Persister and Publisher are optional.
type SessionConfig struct {
	TickInterval time.Duration
	Persister    Persister
	Publisher    Publisher
	Logger       *slog.Logger
}

// Session serializes every access to one Engine.
type Session struct {
	engine    *Engine
	interval  time.Duration
	persister Persister
	publisher Publisher
	logger    *slog.Logger

	intents chan intent
	saves   chan State
	done    chan struct{}
}

// NewSession takes ownership of the engine. Nothing else may touch it afterwards.
func NewSession(engine *Engine, cfg SessionConfig) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{
		engine:    engine,
		interval:  cfg.TickInterval,
		persister: cfg.Persister,
		publisher: cfg.Publisher,
		logger:    cfg.Logger.With("component", "session"),
		intents:   make(chan intent),
		saves:     make(chan State, 1),
		done:      make(chan struct{}),
	}
}

// Run is the main event loop. It blocks until ctx is cancelled, then writes a
// final snapshot and returns.
func (s *Session) Run(ctx context.Context) {
	s.logger.Info("Session started", "tick_interval", s.interval)

	writerDone := make(chan struct{})
	go s.writeSnapshots(writerDone)

	// time.Ticker drops ticks the loop is too slow to take: no catch-up.
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	elapsed := s.interval.Seconds()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case in := <-s.intents:
			if in.apply != nil {
				in.apply(s.engine)
			}
			s.settle()
			in.reply <- s.engine.View()

		case <-ticker.C:
			s.engine.Tick(elapsed)
			s.settle()
		}
	}

	close(s.done)

	// Final flush, so a clean shutdown never loses the last few ticks.
	s.enqueueSave(s.engine.State())
	close(s.saves)
	<-writerDone

	s.logger.Info("Session stopped")
}

// Do applies fn to the engine on the session goroutine and returns the View
// taken right after it. A nil fn is a pure read.
func (s *Session) Do(ctx context.Context, fn func(*Engine)) (View, error) {
	in := intent{apply: fn, reply: make(chan View, 1)}

	select {
	case s.intents <- in:
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.done:
		return View{}, ErrSessionStopped
	}

	select {
	case v := <-in.reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// View is a pure read of the current state.
func (s *Session) View(ctx context.Context) (View, error) {
	return s.Do(ctx, nil)
}

// settle publishes what the last step emitted and writes through if it mutated.
func (s *Session) settle() {
	for _, ev := range s.engine.drainEvents() {
		if ev.Type == EventLevelUp {
			s.logger.Info("Player levelled up", "level", ev.Level)
		}
		if s.publisher != nil {
			s.publisher.Publish(ev)
		}
	}
	if s.engine.takeDirty() {
		s.enqueueSave(s.engine.State())
	}
}

func (s *Session) enqueueSave(st State) {
	if s.persister == nil {
		return
	}
	select {
	case s.saves <- st:
		return
	default:
	}
	// Replace the pending snapshot with the newer one.
	select {
	case <-s.saves:
	default:
	}
	select {
	case s.saves <- st:
	default:
	}
}

func (s *Session) writeSnapshots(done chan<- struct{}) {
	defer close(done)
	if s.persister == nil {
		for range s.saves {
		}
		return
	}

	for st := range s.saves {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.persister.Save(ctx, st); err != nil {
			// The next mutation writes a newer snapshot over this one.
			s.logger.Warn("Snapshot write failed", "error", err)
		}
		cancel()
	}
}
