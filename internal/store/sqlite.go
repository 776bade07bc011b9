// Package store provides the local SQLite snapshot of a game.
// There is exactly one snapshot; every Save replaces it wholesale.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/everforgeworks/data-empire/internal/game"
)

// SQLite wraps a SQLite connection for snapshot persistence.
type SQLite struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

type playerRow struct {
	Points                      float64 `db:"points"`
	ClickPower                  int     `db:"click_power"`
	ClickPowerUpgradesPurchased int     `db:"click_power_upgrades"`
	AutoClickers                int     `db:"auto_clickers"`
	PointsPerSecond             float64 `db:"points_per_second"`
	PlayerLevel                 int     `db:"player_level"`
	HasAccepted                 int     `db:"has_accepted"`
	SavedAt                     int64   `db:"saved_at"`
}

type buildingRow struct {
	BuildingID string `db:"building_id"`
	Owned      int    `db:"owned"`
	Level      int    `db:"level"`
}

type multiplierRow struct {
	Multiplier float64 `db:"multiplier"`
	ExpiresAt  int64   `db:"expires_at"` // unix milliseconds
}

// Open opens or creates the snapshot database at the given path.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer: the session's snapshot goroutine.
	conn.SetMaxOpenConns(1)

	db := &SQLite{
		conn:   conn,
		logger: slog.With("component", "store", "path", path),
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db.logger.Debug("Snapshot store opened")
	return db, nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

// Ping checks the connection, for the health endpoint.
func (db *SQLite) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS player_snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		points REAL NOT NULL,
		click_power INTEGER NOT NULL,
		click_power_upgrades INTEGER NOT NULL,
		auto_clickers INTEGER NOT NULL,
		points_per_second REAL NOT NULL,
		player_level INTEGER NOT NULL,
		has_accepted INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS building_snapshot (
		building_id TEXT PRIMARY KEY,
		owned INTEGER NOT NULL,
		level INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS multiplier_snapshot (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		multiplier REAL NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save writes the snapshot (full replace) in one transaction.
func (db *SQLite) Save(ctx context.Context, s game.State) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	p := s.Player
	row := playerRow{
		Points:                      p.Points,
		ClickPower:                  p.ClickPower,
		ClickPowerUpgradesPurchased: p.ClickPowerUpgradesPurchased,
		AutoClickers:                p.AutoClickers,
		PointsPerSecond:             p.PointsPerSecond,
		PlayerLevel:                 p.PlayerLevel,
		HasAccepted:                 boolToInt(p.HasAccepted),
		SavedAt:                     time.Now().UnixMilli(),
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO player_snapshot
			(id, points, click_power, click_power_upgrades, auto_clickers, points_per_second, player_level, has_accepted, saved_at)
		VALUES
			(1, :points, :click_power, :click_power_upgrades, :auto_clickers, :points_per_second, :player_level, :has_accepted, :saved_at)`,
		row); err != nil {
		return fmt.Errorf("save player: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM building_snapshot"); err != nil {
		return fmt.Errorf("clear buildings: %w", err)
	}
	for id, b := range s.Buildings {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO building_snapshot (building_id, owned, level) VALUES (?, ?, ?)",
			id, b.Owned, b.Level); err != nil {
			return fmt.Errorf("save building %s: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM multiplier_snapshot"); err != nil {
		return fmt.Errorf("clear multipliers: %w", err)
	}
	for _, m := range p.ActiveMultipliers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO multiplier_snapshot (multiplier, expires_at) VALUES (?, ?)",
			m.Multiplier, m.ExpiresAt.UnixMilli()); err != nil {
			return fmt.Errorf("save multiplier: %w", err)
		}
	}

	return tx.Commit()
}

// Load reads the snapshot back. ok is false when nothing was ever saved.
func (db *SQLite) Load(ctx context.Context) (game.State, bool, error) {
	var row playerRow
	err := db.conn.GetContext(ctx, &row, `
		SELECT points, click_power, click_power_upgrades, auto_clickers, points_per_second,
		       player_level, has_accepted, saved_at
		FROM player_snapshot WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return game.State{}, false, nil
	}
	if err != nil {
		return game.State{}, false, fmt.Errorf("load player: %w", err)
	}

	var buildings []buildingRow
	if err := db.conn.SelectContext(ctx, &buildings,
		"SELECT building_id, owned, level FROM building_snapshot"); err != nil {
		return game.State{}, false, fmt.Errorf("load buildings: %w", err)
	}

	var multipliers []multiplierRow
	if err := db.conn.SelectContext(ctx, &multipliers,
		"SELECT multiplier, expires_at FROM multiplier_snapshot ORDER BY id"); err != nil {
		return game.State{}, false, fmt.Errorf("load multipliers: %w", err)
	}

	s := game.State{
		Player: game.PlayerState{
			Points:                      row.Points,
			ClickPower:                  row.ClickPower,
			ClickPowerUpgradesPurchased: row.ClickPowerUpgradesPurchased,
			AutoClickers:                row.AutoClickers,
			PointsPerSecond:             row.PointsPerSecond,
			PlayerLevel:                 row.PlayerLevel,
			HasAccepted:                 row.HasAccepted != 0,
			ActiveMultipliers:           make([]game.ActiveMultiplier, 0, len(multipliers)),
		},
		Buildings: make(map[string]game.BuildingState, len(buildings)),
	}
	for _, b := range buildings {
		s.Buildings[b.BuildingID] = game.BuildingState{Owned: b.Owned, Level: b.Level}
	}
	for _, m := range multipliers {
		s.Player.ActiveMultipliers = append(s.Player.ActiveMultipliers, game.ActiveMultiplier{
			Multiplier: m.Multiplier,
			ExpiresAt:  time.UnixMilli(m.ExpiresAt).UTC(),
		})
	}

	db.logger.Debug("Snapshot loaded", "saved_at", time.UnixMilli(row.SavedAt).UTC())
	return s, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
