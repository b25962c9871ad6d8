package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/week"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DBFile is the database filename inside the data directory.
const DBFile = "weekplan.db"

// settingsKey is the only row of the settings table today.
const settingsKey = "custody"

// SQLiteStore implements Store on SQLite. Records are stored as JSON
// documents next to the columns they are looked up and ordered by.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database in dir.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS routines (
			week_start TEXT PRIMARY KEY,
			mode       TEXT NOT NULL DEFAULT 'regular',
			doc        TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS templates (
			id           TEXT PRIMARY KEY,
			mode         TEXT    NOT NULL,
			kids_present INTEGER NOT NULL DEFAULT 1,
			doc          TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS hard_week_flags (
			week_start TEXT PRIMARY KEY,
			id         TEXT NOT NULL UNIQUE,
			doc        TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS settings (
			name       TEXT PRIMARY KEY,
			doc        BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_templates_mode ON templates(mode, kids_present);
	`)
	return err
}

// --- Routines ---

// LoadRoutine reads the routine for week k.
func (s *SQLiteStore) LoadRoutine(k week.Key) (*routine.WeeklyRoutine, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM routines WHERE week_start = ?`, string(k)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, routineNotFound(k)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load routine %s: %w", k, err)
	}
	var r routine.WeeklyRoutine
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("store: decode routine %s: %w", k, err)
	}
	return &r, nil
}

// SaveRoutine upserts r under its week start date.
func (s *SQLiteStore) SaveRoutine(r *routine.WeeklyRoutine) error {
	if err := checkRoutine(r); err != nil {
		return err
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: encode routine %s: %w", r.WeekStartDate, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO routines (week_start, mode, doc, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(week_start) DO UPDATE SET
			mode = excluded.mode,
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		string(r.WeekStartDate), string(r.EffectiveMode()), string(doc), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: save routine %s: %w", r.WeekStartDate, err)
	}
	return nil
}

// DeleteRoutine removes the routine for week k.
func (s *SQLiteStore) DeleteRoutine(k week.Key) error {
	res, err := s.db.Exec(`DELETE FROM routines WHERE week_start = ?`, string(k))
	if err != nil {
		return fmt.Errorf("store: delete routine %s: %w", k, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return routineNotFound(k)
	}
	return nil
}

// ListRoutines returns every stored routine ordered by week.
func (s *SQLiteStore) ListRoutines() ([]routine.WeeklyRoutine, error) {
	rows, err := s.db.Query(`SELECT doc FROM routines ORDER BY week_start`)
	if err != nil {
		return nil, fmt.Errorf("store: list routines: %w", err)
	}
	defer rows.Close()

	var result []routine.WeeklyRoutine
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var r routine.WeeklyRoutine
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("store: decode routine: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// --- Templates ---

// LoadTemplate reads a saved template by id.
func (s *SQLiteStore) LoadTemplate(id string) (*routine.Template, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM templates WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, templateNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load template %q: %w", id, err)
	}
	var t routine.Template
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("store: decode template %q: %w", id, err)
	}
	return &t, nil
}

// SaveTemplate upserts t under its id.
func (s *SQLiteStore) SaveTemplate(t *routine.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("store: encode template %q: %w", t.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO templates (id, mode, kids_present, doc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			kids_present = excluded.kids_present,
			doc = excluded.doc`,
		t.ID, string(t.Mode), t.KidsPresent, string(doc))
	if err != nil {
		return fmt.Errorf("store: save template %q: %w", t.ID, err)
	}
	return nil
}

// ListTemplates returns saved templates ordered by id.
func (s *SQLiteStore) ListTemplates() ([]routine.Template, error) {
	rows, err := s.db.Query(`SELECT doc FROM templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list templates: %w", err)
	}
	defer rows.Close()

	var result []routine.Template
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t routine.Template
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			return nil, fmt.Errorf("store: decode template: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// --- Custody settings ---

// LoadSettings returns the stored settings blob, or nil if none exists.
func (s *SQLiteStore) LoadSettings() ([]byte, error) {
	var doc []byte
	err := s.db.QueryRow(`SELECT doc FROM settings WHERE name = ?`, settingsKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load settings: %w", err)
	}
	return doc, nil
}

// SaveSettings replaces the settings blob.
func (s *SQLiteStore) SaveSettings(data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (name, doc, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		settingsKey, data)
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}

// --- Hard-week flags ---

// LoadFlag reads the flag for week k.
func (s *SQLiteStore) LoadFlag(k week.Key) (*routine.HardWeekFlag, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM hard_week_flags WHERE week_start = ?`, string(k)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, flagNotFound(k)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load flag %s: %w", k, err)
	}
	var f routine.HardWeekFlag
	if err := json.Unmarshal([]byte(doc), &f); err != nil {
		return nil, fmt.Errorf("store: decode flag %s: %w", k, err)
	}
	return &f, nil
}

// SaveFlag upserts f under its week start date.
func (s *SQLiteStore) SaveFlag(f *routine.HardWeekFlag) error {
	if err := checkFlag(f); err != nil {
		return err
	}
	doc, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("store: encode flag %s: %w", f.WeekStartDate, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO hard_week_flags (week_start, id, doc)
		VALUES (?, ?, ?)
		ON CONFLICT(week_start) DO UPDATE SET
			id = excluded.id,
			doc = excluded.doc`,
		string(f.WeekStartDate), f.ID, string(doc))
	if err != nil {
		return fmt.Errorf("store: save flag %s: %w", f.WeekStartDate, err)
	}
	return nil
}

// DeleteFlag removes the flag for week k.
func (s *SQLiteStore) DeleteFlag(k week.Key) error {
	res, err := s.db.Exec(`DELETE FROM hard_week_flags WHERE week_start = ?`, string(k))
	if err != nil {
		return fmt.Errorf("store: delete flag %s: %w", k, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return flagNotFound(k)
	}
	return nil
}

// ListFlags returns every flag ordered by week.
func (s *SQLiteStore) ListFlags() ([]routine.HardWeekFlag, error) {
	rows, err := s.db.Query(`SELECT doc FROM hard_week_flags ORDER BY week_start`)
	if err != nil {
		return nil, fmt.Errorf("store: list flags: %w", err)
	}
	defer rows.Close()

	var result []routine.HardWeekFlag
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var f routine.HardWeekFlag
		if err := json.Unmarshal([]byte(doc), &f); err != nil {
			return nil, fmt.Errorf("store: decode flag: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
