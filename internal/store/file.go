package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/week"
)

const (
	// RoutinesFile holds every weekly routine keyed by week start date.
	RoutinesFile = "weekly-routines.json"
	// TemplatesFile holds user-saved templates keyed by id.
	TemplatesFile = "routine-templates.json"
	// FlagsFile holds hard-week flags keyed by week start date.
	FlagsFile = "hard-week-flags.json"
	// SettingsFile holds the custody settings blob.
	SettingsFile = "custody-settings.json"
)

// FileStore implements Store using JSON files in a directory.
//
// Each collection is one document, so a write to any week rewrites the
// whole file. mu serializes those read-modify-write cycles across weeks.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a filesystem-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (fs *FileStore) Dir() string { return fs.dir }

// --- Routines ---

// LoadRoutine reads the routine for week k.
func (fs *FileStore) LoadRoutine(k week.Key) (*routine.WeeklyRoutine, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var all map[week.Key]routine.WeeklyRoutine
	if err := fs.readDoc(RoutinesFile, &all); err != nil {
		return nil, err
	}
	r, ok := all[k]
	if !ok {
		return nil, routineNotFound(k)
	}
	return &r, nil
}

// SaveRoutine writes r under its week start date.
func (fs *FileStore) SaveRoutine(r *routine.WeeklyRoutine) error {
	if err := checkRoutine(r); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all := map[week.Key]routine.WeeklyRoutine{}
	if err := fs.readDoc(RoutinesFile, &all); err != nil {
		return err
	}
	all[r.WeekStartDate] = *r.Clone()
	return fs.writeDoc(RoutinesFile, all)
}

// DeleteRoutine removes the routine for week k.
func (fs *FileStore) DeleteRoutine(k week.Key) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all := map[week.Key]routine.WeeklyRoutine{}
	if err := fs.readDoc(RoutinesFile, &all); err != nil {
		return err
	}
	if _, ok := all[k]; !ok {
		return routineNotFound(k)
	}
	delete(all, k)
	return fs.writeDoc(RoutinesFile, all)
}

// ListRoutines returns every stored routine ordered by week.
func (fs *FileStore) ListRoutines() ([]routine.WeeklyRoutine, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var all map[week.Key]routine.WeeklyRoutine
	if err := fs.readDoc(RoutinesFile, &all); err != nil {
		return nil, err
	}
	result := make([]routine.WeeklyRoutine, 0, len(all))
	for _, r := range all {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekStartDate < result[j].WeekStartDate })
	return result, nil
}

// --- Templates ---

// LoadTemplate reads a saved template by id.
func (fs *FileStore) LoadTemplate(id string) (*routine.Template, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var all map[string]routine.Template
	if err := fs.readDoc(TemplatesFile, &all); err != nil {
		return nil, err
	}
	t, ok := all[id]
	if !ok {
		return nil, templateNotFound(id)
	}
	return &t, nil
}

// SaveTemplate writes t under its id.
func (fs *FileStore) SaveTemplate(t *routine.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all := map[string]routine.Template{}
	if err := fs.readDoc(TemplatesFile, &all); err != nil {
		return err
	}
	all[t.ID] = *t.Clone()
	return fs.writeDoc(TemplatesFile, all)
}

// ListTemplates returns saved templates ordered by id.
func (fs *FileStore) ListTemplates() ([]routine.Template, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var all map[string]routine.Template
	if err := fs.readDoc(TemplatesFile, &all); err != nil {
		return nil, err
	}
	result := make([]routine.Template, 0, len(all))
	for _, t := range all {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// --- Custody settings ---

// LoadSettings returns the stored settings blob, or nil if none exists.
func (fs *FileStore) LoadSettings() ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path(SettingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading custody settings: %w", err)
	}
	return data, nil
}

// SaveSettings replaces the settings blob.
func (fs *FileStore) SaveSettings(data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.writeFile(SettingsFile, data)
}

// --- Hard-week flags ---

// LoadFlag reads the flag for week k.
func (fs *FileStore) LoadFlag(k week.Key) (*routine.HardWeekFlag, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var all map[week.Key]routine.HardWeekFlag
	if err := fs.readDoc(FlagsFile, &all); err != nil {
		return nil, err
	}
	f, ok := all[k]
	if !ok {
		return nil, flagNotFound(k)
	}
	return &f, nil
}

// SaveFlag writes f under its week start date.
func (fs *FileStore) SaveFlag(f *routine.HardWeekFlag) error {
	if err := checkFlag(f); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all := map[week.Key]routine.HardWeekFlag{}
	if err := fs.readDoc(FlagsFile, &all); err != nil {
		return err
	}
	all[f.WeekStartDate] = *f
	return fs.writeDoc(FlagsFile, all)
}

// DeleteFlag removes the flag for week k.
func (fs *FileStore) DeleteFlag(k week.Key) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all := map[week.Key]routine.HardWeekFlag{}
	if err := fs.readDoc(FlagsFile, &all); err != nil {
		return err
	}
	if _, ok := all[k]; !ok {
		return flagNotFound(k)
	}
	delete(all, k)
	return fs.writeDoc(FlagsFile, all)
}

// ListFlags returns every flag ordered by week.
func (fs *FileStore) ListFlags() ([]routine.HardWeekFlag, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var all map[week.Key]routine.HardWeekFlag
	if err := fs.readDoc(FlagsFile, &all); err != nil {
		return nil, err
	}
	result := make([]routine.HardWeekFlag, 0, len(all))
	for _, f := range all {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekStartDate < result[j].WeekStartDate })
	return result, nil
}

// Close is a no-op; FileStore holds no open handles.
func (fs *FileStore) Close() error { return nil }

// --- File helpers ---

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dir, name)
}

// readDoc decodes a collection file into v. A missing or empty file leaves
// v untouched.
func (fs *FileStore) readDoc(name string, v any) error {
	data, err := os.ReadFile(fs.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// writeDoc marshals v and writes it to a collection file.
func (fs *FileStore) writeDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	return fs.writeFile(name, data)
}

// writeFile replaces a file through a temp file and rename, so readers
// never see a partial document.
func (fs *FileStore) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(fs.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), fs.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
