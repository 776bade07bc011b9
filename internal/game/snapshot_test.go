package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"
	"time"
)

type stubSnapshotter struct {
	state State
	ok    bool
	err   error
}

func (s *stubSnapshotter) Save(context.Context, State) error { return nil }

func (s *stubSnapshotter) Load(context.Context) (State, bool, error) {
	return s.state, s.ok, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRestoreFrom(t *testing.T) {
	saved := NewState(testCatalog())
	saved.Player.Points = 42
	saved.Player.HasAccepted = true
	saved.Player.PointsPerSecond = 999 // stale cache, must be rebuilt
	saved.Buildings["farm"] = BuildingState{Owned: 3, Level: 2}
	saved.Buildings["retired"] = BuildingState{Owned: 7, Level: 1}

	e, _ := newTestEngine(t)
	if !RestoreFrom(context.Background(), &stubSnapshotter{state: saved, ok: true}, e, discardLogger()) {
		t.Fatal("valid snapshot was not applied")
	}

	st := e.State()
	if st.Player.Points != 42 || !st.Player.HasAccepted {
		t.Fatalf("player = %+v", st.Player)
	}
	if _, ok := st.Buildings["retired"]; ok {
		t.Fatal("kind missing from the catalog survived the restore")
	}
	assertInvariants(t, e)
}

func TestRestoreFromFallsBackToDefaults(t *testing.T) {
	corrupt := NewState(testCatalog())
	corrupt.Player.Points = -5

	badLevel := NewState(testCatalog())
	badLevel.Buildings["farm"] = BuildingState{Owned: 1, Level: 0}

	infMultiplier := NewState(testCatalog())
	infMultiplier.Player.ActiveMultipliers = []ActiveMultiplier{
		{Multiplier: math.Inf(1), ExpiresAt: time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)},
	}

	tests := []struct {
		name string
		src  *stubSnapshotter
	}{
		{"nothing saved", &stubSnapshotter{}},
		{"unreadable", &stubSnapshotter{err: errors.New("database disk image is malformed")}},
		{"negative points", &stubSnapshotter{state: corrupt, ok: true}},
		{"level zero", &stubSnapshotter{state: badLevel, ok: true}},
		{"infinite multiplier", &stubSnapshotter{state: infMultiplier, ok: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			if RestoreFrom(context.Background(), tt.src, e, discardLogger()) {
				t.Fatal("snapshot reported as applied")
			}
			if got, want := e.State(), NewState(e.Catalog()); !reflect.DeepEqual(got, want) {
				t.Fatalf("engine left the defaults: %+v", got.Player)
			}
		})
	}
}
