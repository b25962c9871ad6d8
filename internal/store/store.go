// Package store persists weekly routines, templates, custody settings and
// hard-week flags.
//
// Two backends implement Store: FileStore keeps one JSON document per
// collection in a data directory, SQLiteStore keeps the same documents in
// SQLite tables. Both return copies, never shared values, and report
// missing records with routine.ErrNotFound.
package store

import (
	"fmt"

	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/week"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store defines the persistence interface for the planner.
// Abstracted for testability.
type Store interface {
	// LoadRoutine returns the routine stored under k.
	LoadRoutine(k week.Key) (*routine.WeeklyRoutine, error)
	// SaveRoutine writes r under r.WeekStartDate, replacing any previous value.
	SaveRoutine(r *routine.WeeklyRoutine) error
	DeleteRoutine(k week.Key) error
	// ListRoutines returns all routines ordered by week.
	ListRoutines() ([]routine.WeeklyRoutine, error)

	LoadTemplate(id string) (*routine.Template, error)
	SaveTemplate(t *routine.Template) error
	// ListTemplates returns stored templates ordered by id.
	ListTemplates() ([]routine.Template, error)

	// LoadSettings returns the raw custody settings blob, or nil when none
	// has been saved. The blob is opaque here; custody.Parse reads it.
	LoadSettings() ([]byte, error)
	SaveSettings(data []byte) error

	LoadFlag(k week.Key) (*routine.HardWeekFlag, error)
	SaveFlag(f *routine.HardWeekFlag) error
	DeleteFlag(k week.Key) error
	// ListFlags returns all flags ordered by week.
	ListFlags() ([]routine.HardWeekFlag, error)

	Close() error
}

// Open returns the backend named by backend, rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		fs, err := NewFileStore(dataDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q: must be one of: file, sqlite", backend)
	}
}

func routineNotFound(k week.Key) error {
	return fmt.Errorf("routine for week %s: %w", k, routine.ErrNotFound)
}

func templateNotFound(id string) error {
	return fmt.Errorf("template %q: %w", id, routine.ErrNotFound)
}

func flagNotFound(k week.Key) error {
	return fmt.Errorf("hard week flag for %s: %w", k, routine.ErrNotFound)
}

func checkRoutine(r *routine.WeeklyRoutine) error {
	if r == nil {
		return fmt.Errorf("%w: routine is nil", routine.ErrInvariant)
	}
	if !r.WeekStartDate.Valid() {
		return fmt.Errorf("%w: routine weekStartDate %q is not a Monday date", routine.ErrInvariant, r.WeekStartDate)
	}
	return nil
}

func checkFlag(f *routine.HardWeekFlag) error {
	if f == nil {
		return fmt.Errorf("%w: flag is nil", routine.ErrInvariant)
	}
	if !f.WeekStartDate.Valid() {
		return fmt.Errorf("%w: flag weekStartDate %q is not a Monday date", routine.ErrInvariant, f.WeekStartDate)
	}
	return nil
}
