package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/everforgeworks/data-empire/internal/game"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "empire.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleState(t *testing.T) game.State {
	t.Helper()
	c, err := game.DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	s := game.NewState(c)
	s.Player.Points = 1234.5
	s.Player.ClickPower = 3
	s.Player.ClickPowerUpgradesPurchased = 2
	s.Player.AutoClickers = 4
	s.Player.PointsPerSecond = 0.3
	s.Player.PlayerLevel = 2
	s.Player.HasAccepted = true
	s.Player.ActiveMultipliers = []game.ActiveMultiplier{
		{Multiplier: 2, ExpiresAt: time.Date(2026, 3, 1, 10, 0, 30, 0, time.UTC)},
	}
	s.Buildings["mouse_farm"] = game.BuildingState{Owned: 3, Level: 2}
	return s
}

func TestLoadEmpty(t *testing.T) {
	db := openTestStore(t)

	_, ok, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ok {
		t.Fatal("empty store reported a snapshot")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestStore(t)
	ctx := context.Background()
	want := sampleState(t)

	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, ok, err := db.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v, err %v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	db := openTestStore(t)
	ctx := context.Background()

	first := sampleState(t)
	if err := db.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	c, _ := game.DefaultCatalog()
	fresh := game.NewState(c)
	if err := db.Save(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	got, _, err := db.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, fresh) {
		t.Fatalf("stale data survived the overwrite: %+v", got.Player)
	}
}

func TestCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	db := openTestStore(t)
	ctx := context.Background()

	bad := sampleState(t)
	bad.Player.Points = -10
	if err := db.Save(ctx, bad); err != nil {
		t.Fatal(err)
	}

	c, _ := game.DefaultCatalog()
	e := game.NewEngine(c)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if game.RestoreFrom(ctx, db, e, logger) {
		t.Fatal("corrupt snapshot was applied")
	}
	if !reflect.DeepEqual(e.State(), game.NewState(c)) {
		t.Fatal("engine did not keep its defaults")
	}
}

func TestRestoreThroughEngine(t *testing.T) {
	db := openTestStore(t)
	ctx := context.Background()
	if err := db.Save(ctx, sampleState(t)); err != nil {
		t.Fatal(err)
	}

	c, _ := game.DefaultCatalog()
	e := game.NewEngine(c)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if !game.RestoreFrom(ctx, db, e, logger) {
		t.Fatal("snapshot was not applied")
	}
	st := e.State()
	if st.Buildings["mouse_farm"].Owned != 3 || st.Player.ClickPower != 3 {
		t.Fatalf("restored state = %+v", st.Player)
	}
	if want := game.RecomputePointsPerSecond(c, st.Buildings); st.Player.PointsPerSecond != want {
		t.Fatalf("points per second = %v, want recomputed %v", st.Player.PointsPerSecond, want)
	}
}
