// Package slotdb is the autosave slot index: a small SQLite database
// recording which rotating slot holds which save. It is a read model
// for tooling; losing it never loses a save, since snapshot files are
// self-describing.
package slotdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB
}

type SlotRecord struct {
	Slot    int
	Tick    uint64
	Minute  uint64
	Seed    int64
	Path    string
	SavedAt string
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single connection: callers are already single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS autosaves (
	slot     INTEGER PRIMARY KEY,
	tick     INTEGER NOT NULL,
	minute   INTEGER NOT NULL,
	seed     INTEGER NOT NULL,
	path     TEXT NOT NULL,
	saved_at TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// RecordSlot upserts the row for one rotating slot.
func (d *DB) RecordSlot(rec SlotRecord) error {
	if rec.SavedAt == "" {
		rec.SavedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := d.db.Exec(`
INSERT INTO autosaves (slot, tick, minute, seed, path, saved_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
	tick = excluded.tick,
	minute = excluded.minute,
	seed = excluded.seed,
	path = excluded.path,
	saved_at = excluded.saved_at;`,
		rec.Slot, rec.Tick, rec.Minute, rec.Seed, rec.Path, rec.SavedAt)
	return err
}

// Latest returns the record with the highest tick, or ok=false when the
// index is empty.
func (d *DB) Latest() (SlotRecord, bool, error) {
	row := d.db.QueryRow(`
SELECT slot, tick, minute, seed, path, saved_at
FROM autosaves ORDER BY tick DESC LIMIT 1;`)
	var rec SlotRecord
	err := row.Scan(&rec.Slot, &rec.Tick, &rec.Minute, &rec.Seed, &rec.Path, &rec.SavedAt)
	if err == sql.ErrNoRows {
		return SlotRecord{}, false, nil
	}
	if err != nil {
		return SlotRecord{}, false, err
	}
	return rec, true, nil
}

// Slots lists all recorded slots ordered by slot number.
func (d *DB) Slots() ([]SlotRecord, error) {
	rows, err := d.db.Query(`
SELECT slot, tick, minute, seed, path, saved_at
FROM autosaves ORDER BY slot;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SlotRecord
	for rows.Next() {
		var rec SlotRecord
		if err := rows.Scan(&rec.Slot, &rec.Tick, &rec.Minute, &rec.Seed, &rec.Path, &rec.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
