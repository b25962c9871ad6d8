// Package templates provides the built-in routine templates.
//
// The library is embedded in the binary as YAML and parsed once. Callers get
// copies, so mutating a returned template never affects later lookups.
package templates

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/routine"
)

//go:embed library.yaml
var libraryYAML []byte

var (
	loadOnce sync.Once
	library  map[string]*routine.Template
	loadErr  error
)

// Parse decodes a YAML list of templates and validates each one.
func Parse(data []byte) ([]routine.Template, error) {
	var list []routine.Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	seen := make(map[string]bool, len(list))
	for i := range list {
		if err := list[i].Validate(); err != nil {
			return nil, fmt.Errorf("template #%d: %w", i, err)
		}
		if seen[list[i].ID] {
			return nil, fmt.Errorf("duplicate template id %q", list[i].ID)
		}
		seen[list[i].ID] = true
	}
	return list, nil
}

func load() (map[string]*routine.Template, error) {
	loadOnce.Do(func() {
		list, err := Parse(libraryYAML)
		if err != nil {
			loadErr = err
			return
		}
		library = make(map[string]*routine.Template, len(list))
		for i := range list {
			library[list[i].ID] = &list[i]
		}
	})
	return library, loadErr
}

// Builtin returns every built-in template sorted by id.
func Builtin() ([]routine.Template, error) {
	lib, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]routine.Template, 0, len(lib))
	for _, t := range lib {
		out = append(out, *t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Lookup returns the built-in template with the given id.
func Lookup(id string) (*routine.Template, error) {
	lib, err := load()
	if err != nil {
		return nil, err
	}
	t, ok := lib[id]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", id, routine.ErrNotFound)
	}
	return t.Clone(), nil
}

// ForMode returns the standard built-in template for a mode and custody state.
func ForMode(m mode.Mode, kidsPresent bool) (*routine.Template, error) {
	return Lookup(mode.TemplateID(m, kidsPresent))
}
