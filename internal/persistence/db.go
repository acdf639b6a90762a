// Package persistence stores generated worlds in SQLite so maps can be
// regenerated once and served or inspected later.
package persistence

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/wildermap/internal/worldgen"
)

// DB wraps a SQLite connection holding one saved world.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS terrain_rows (
		y INTEGER PRIMARY KEY,
		categories TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		resource TEXT NOT NULL,
		vassal_to INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settlements_kind ON settlements(kind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveWorld performs a full replace of the stored world: terrain rows,
// settlements, and metadata including a fresh world id.
func (db *DB) SaveWorld(w *worldgen.World, name string) error {
	slog.Info("saving world",
		"name", name,
		"width", w.Grid.Width,
		"height", w.Grid.Height,
		"settlements", len(w.Settlements))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"terrain_rows", "settlements", "world_meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	stmt, err := tx.Preparex("INSERT INTO terrain_rows (y, categories) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	ids := make([]string, w.Grid.Width)
	for y := 0; y < w.Grid.Height; y++ {
		for x := 0; x < w.Grid.Width; x++ {
			ids[x] = w.Grid.At(x, y).String()
		}
		if _, err := stmt.Exec(y, strings.Join(ids, " ")); err != nil {
			return fmt.Errorf("insert terrain row %d: %w", y, err)
		}
	}

	for _, s := range w.Settlements {
		_, err := tx.Exec(`INSERT INTO settlements
			(id, kind, name, x, y, resource, vassal_to)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Kind.String(), s.Name, s.X, s.Y, string(s.Resource), s.VassalTo,
		)
		if err != nil {
			return fmt.Errorf("insert settlement %d: %w", s.ID, err)
		}
	}

	meta := map[string]string{
		"world_id":   uuid.NewString(),
		"name":       name,
		"width":      strconv.Itoa(w.Grid.Width),
		"height":     strconv.Itoa(w.Grid.Height),
		"seed":       strconv.FormatInt(w.Seed, 10),
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	for _, key := range []string{"world_id", "name", "width", "height", "seed", "created_at"} {
		_, err := tx.Exec(
			"INSERT INTO world_meta (key, value) VALUES (?, ?)",
			key, meta[key],
		)
		if err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world saved", "world_id", meta["world_id"])
	return nil
}

// LoadWorld reconstructs the stored world: grid, settlements, and the
// vassal links implied by vassal_to.
func (db *DB) LoadWorld() (*worldgen.World, error) {
	width, err := db.metaInt("width")
	if err != nil {
		return nil, fmt.Errorf("load width: %w", err)
	}
	height, err := db.metaInt("height")
	if err != nil {
		return nil, fmt.Errorf("load height: %w", err)
	}
	seedStr, err := db.GetMeta("seed")
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	seed, err := strconv.ParseInt(seedStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	grid := worldgen.NewGrid(width, height)
	type terrainRow struct {
		Y          int    `db:"y"`
		Categories string `db:"categories"`
	}
	var rows []terrainRow
	if err := db.conn.Select(&rows, "SELECT y, categories FROM terrain_rows ORDER BY y"); err != nil {
		return nil, fmt.Errorf("load terrain: %w", err)
	}
	if len(rows) != height {
		return nil, fmt.Errorf("terrain rows: got %d, want %d", len(rows), height)
	}
	for _, row := range rows {
		fields := strings.Fields(row.Categories)
		if len(fields) != width {
			return nil, fmt.Errorf("terrain row %d: got %d cells, want %d", row.Y, len(fields), width)
		}
		for x, id := range fields {
			c, err := worldgen.CategoryFromString(id)
			if err != nil {
				return nil, fmt.Errorf("terrain row %d: %w", row.Y, err)
			}
			grid.Set(x, row.Y, c)
		}
	}

	type settlementRow struct {
		ID       int    `db:"id"`
		Kind     string `db:"kind"`
		Name     string `db:"name"`
		X        int    `db:"x"`
		Y        int    `db:"y"`
		Resource string `db:"resource"`
		VassalTo int    `db:"vassal_to"`
	}
	var srows []settlementRow
	if err := db.conn.Select(&srows,
		"SELECT id, kind, name, x, y, resource, vassal_to FROM settlements ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load settlements: %w", err)
	}

	settlements := make([]*worldgen.Settlement, 0, len(srows))
	byID := make(map[int]*worldgen.Settlement, len(srows))
	for _, r := range srows {
		kind, ok := worldgen.KindFromString(r.Kind)
		if !ok {
			return nil, fmt.Errorf("settlement %d: unknown kind %q", r.ID, r.Kind)
		}
		s := &worldgen.Settlement{
			ID:       r.ID,
			Kind:     kind,
			Name:     r.Name,
			X:        r.X,
			Y:        r.Y,
			Resource: worldgen.Resource(r.Resource),
			VassalTo: r.VassalTo,
		}
		settlements = append(settlements, s)
		byID[s.ID] = s
	}
	for _, s := range settlements {
		if s.VassalTo >= 0 {
			if lord, ok := byID[s.VassalTo]; ok {
				lord.Vassals = append(lord.Vassals, s.ID)
			}
		}
	}

	return &worldgen.World{
		Grid:        grid,
		Settlements: settlements,
		Seed:        seed,
	}, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func (db *DB) metaInt(key string) (int, error) {
	v, err := db.GetMeta(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}
