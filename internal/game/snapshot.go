package game

import (
	"context"
	"log/slog"
)

// Persister writes a full snapshot, replacing whatever was saved before.
type Persister interface {
	Save(ctx context.Context, s State) error
}

// Snapshotter is a Persister that can also read the snapshot back.
// Load reports ok=false when nothing has been saved yet.
type Snapshotter interface {
	Persister
	Load(ctx context.Context) (s State, ok bool, err error)
}

// RestoreFrom loads the saved snapshot into the engine.
// A missing, unreadable or invalid snapshot leaves the engine at its defaults;
// the player simply starts fresh. It reports whether a snapshot was applied.
func RestoreFrom(ctx context.Context, src Snapshotter, e *Engine, logger *slog.Logger) bool {
	logger = logger.With("component", "snapshot", "operation", "restore")

	s, ok, err := src.Load(ctx)
	if err != nil {
		logger.Warn("Snapshot unreadable, starting a new game", "error", err)
		return false
	}
	if !ok {
		logger.Info("No saved game found, starting a new game")
		return false
	}
	if err := e.Restore(s); err != nil {
		logger.Warn("Snapshot rejected, starting a new game", "error", err)
		return false
	}

	p := e.state.Player
	logger.Info("Saved game restored",
		"points", p.Points,
		"points_per_second", p.PointsPerSecond,
		"player_level", p.PlayerLevel)
	return true
}
