/*
Package game
File: state.go
Description:
    Manages the runtime state of a game.
    The Engine owns the PlayerState and every BuildingState; there are no
    package globals. It also handles initialization, reset, restoring a saved
    snapshot and swapping the catalog on reload.

    An Engine is not safe for concurrent use. Session is its single owner.
*/

package game

import (
	"math"
	"time"

	apperrors "github.com/everforgeworks/data-empire/internal/shared/errors"
)

// Engine holds all numeric game state and applies the economy rules to it.
type Engine struct {
	catalog *Catalog
	state   State
	now     func() time.Time

	// pending notifications and the write-through flag, consumed by the Session
	events []Event
	dirty  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, used for multiplier expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine in the initial state for the given catalog.
func NewEngine(catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = NewState(catalog)
	return e
}

// NewState returns the documented initial defaults: nothing owned, every
// building at level 1, zero points, click power 1, player level 1.
func NewState(catalog *Catalog) State {
	buildings := make(map[string]BuildingState, len(catalog.Buildings))
	for _, b := range catalog.Buildings {
		buildings[b.ID] = BuildingState{Owned: 0, Level: 1}
	}

	return State{
		Player: PlayerState{
			Points:            0,
			ClickPower:        1,
			PlayerLevel:       1,
			ActiveMultipliers: []ActiveMultiplier{},
		},
		Buildings: buildings,
	}
}

// Catalog returns the catalog the engine is currently playing with.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// State returns a deep copy of the current state.
func (e *Engine) State() State {
	return e.state.clone()
}

func (s State) clone() State {
	out := State{
		Player:    s.Player,
		Buildings: make(map[string]BuildingState, len(s.Buildings)),
	}
	out.Player.ActiveMultipliers = append([]ActiveMultiplier{}, s.Player.ActiveMultipliers...)
	for id, b := range s.Buildings {
		out.Buildings[id] = b
	}
	return out
}

// Validate checks the numeric invariants every reachable state satisfies.
// A snapshot failing it is treated as corrupt.
func (s State) Validate() error {
	p := s.Player
	switch {
	case math.IsNaN(p.Points) || math.IsInf(p.Points, 0) || p.Points < 0:
		return apperrors.Validationf("points must be a finite number >= 0, got %v", p.Points)
	case p.ClickPower < 1:
		return apperrors.Validationf("click power must be >= 1, got %d", p.ClickPower)
	case p.ClickPowerUpgradesPurchased < 0:
		return apperrors.Validationf("click power upgrades must be >= 0, got %d", p.ClickPowerUpgradesPurchased)
	case p.AutoClickers < 0:
		return apperrors.Validationf("auto clickers must be >= 0, got %d", p.AutoClickers)
	case p.PlayerLevel < 1:
		return apperrors.Validationf("player level must be >= 1, got %d", p.PlayerLevel)
	}

	for id, b := range s.Buildings {
		if b.Owned < 0 {
			return apperrors.Validationf("building %q: owned must be >= 0, got %d", id, b.Owned)
		}
		if b.Level < 1 {
			return apperrors.Validationf("building %q: level must be >= 1, got %d", id, b.Level)
		}
	}
	for _, m := range p.ActiveMultipliers {
		if math.IsNaN(m.Multiplier) || math.IsInf(m.Multiplier, 0) || m.Multiplier < 1 {
			return apperrors.Validationf("active multiplier must be a finite number >= 1, got %v", m.Multiplier)
		}
	}
	return nil
}

// Restore replaces the state with a saved snapshot.
// Kinds missing from the snapshot start fresh, kinds no longer in the catalog
// are dropped, and the production cache is rebuilt rather than trusted.
func (e *Engine) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}

	restored := s.clone()
	if restored.Player.ActiveMultipliers == nil {
		restored.Player.ActiveMultipliers = []ActiveMultiplier{}
	}
	e.state = restored
	e.normalize()
	return nil
}

// SetCatalog swaps the catalog (hot reload) and rebuilds the production cache.
func (e *Engine) SetCatalog(c *Catalog) {
	e.catalog = c
	e.normalize()
	e.dirty = true
}

// normalize aligns the building map with the catalog and recomputes the cache.
func (e *Engine) normalize() {
	buildings := make(map[string]BuildingState, len(e.catalog.Buildings))
	for _, b := range e.catalog.Buildings {
		if st, ok := e.state.Buildings[b.ID]; ok {
			buildings[b.ID] = st
		} else {
			buildings[b.ID] = BuildingState{Owned: 0, Level: 1}
		}
	}
	e.state.Buildings = buildings
	e.state.Player.PointsPerSecond = RecomputePointsPerSecond(e.catalog, buildings)

	// A saved level below what the production implies is lifted; never lowered.
	if lvl := LevelFor(e.state.Player.PointsPerSecond); lvl > e.state.Player.PlayerLevel {
		e.state.Player.PlayerLevel = lvl
	}
}

// Reset restores every field to the initial defaults.
func (e *Engine) Reset() {
	e.state = NewState(e.catalog)
	e.emit(Event{Type: EventReset})
}

// SetAccepted opens the onboarding gate. The gate only ever moves false to
// true; closing it again takes a Reset.
func (e *Engine) SetAccepted(accepted bool) {
	if !accepted || e.state.Player.HasAccepted {
		return
	}
	e.state.Player.HasAccepted = true
	e.emit(Event{Type: EventAccepted})
}

// RecomputePointsPerSecond sums Production over every kind of the catalog.
// The Engine maintains the same value incrementally; this is the reference.
func RecomputePointsPerSecond(c *Catalog, buildings map[string]BuildingState) float64 {
	total := 0.0
	for _, kind := range c.Buildings {
		st, ok := buildings[kind.ID]
		if !ok {
			continue
		}
		total += Production(kind, st.Level, st.Owned)
	}
	return total
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
	e.dirty = true
}

func (e *Engine) drainEvents() []Event {
	evs := e.events
	e.events = nil
	return evs
}

func (e *Engine) takeDirty() bool {
	d := e.dirty
	e.dirty = false
	return d
}
