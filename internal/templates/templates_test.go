package templates

import (
	"errors"
	"strings"
	"testing"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/week"
)

// --- Builtin ---

func TestBuiltin_CoversEveryModeAndCustodyState(t *testing.T) {
	list, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() failed: %v", err)
	}
	if len(list) != 6 {
		t.Fatalf("Builtin() returned %d templates, want 6", len(list))
	}
	for _, m := range []mode.Mode{mode.Regular, mode.Hard, mode.Hardest} {
		for _, kids := range []bool{true, false} {
			tpl, err := ForMode(m, kids)
			if err != nil {
				t.Errorf("ForMode(%s, %v): %v", m, kids, err)
				continue
			}
			if tpl.Mode != m || tpl.KidsPresent != kids {
				t.Errorf("template %s has mode %s kids %v, want %s %v", tpl.ID, tpl.Mode, tpl.KidsPresent, m, kids)
			}
		}
	}
}

func TestBuiltin_SortedByID(t *testing.T) {
	list, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("not sorted: %s before %s", list[i-1].ID, list[i].ID)
		}
	}
}

func TestBuiltin_AllInstantiate(t *testing.T) {
	list, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}
	for _, tpl := range list {
		r, err := routine.Instantiate(&tpl, "2024-11-04")
		if err != nil {
			t.Errorf("Instantiate(%s): %v", tpl.ID, err)
			continue
		}
		if len(r.DailyRoutines) != len(tpl.Days) {
			t.Errorf("%s: %d days, want %d", tpl.ID, len(r.DailyRoutines), len(tpl.Days))
		}
	}
}

// --- Lookup ---

func TestLookup_ReturnsCopy(t *testing.T) {
	a, err := Lookup("regular-with-kids")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	a.Name = "changed"
	a.Days[week.Monday].Morning[0].Text = "changed"

	b, err := Lookup("regular-with-kids")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name == "changed" || b.Days[week.Monday].Morning[0].Text == "changed" {
		t.Error("mutating a looked-up template changed the library")
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("no-such-template")
	if !errors.Is(err, routine.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLookup_AliasesResolve(t *testing.T) {
	tpl, err := Lookup("recovery-solo")
	if err != nil {
		t.Fatal(err)
	}
	sections := tpl.Days[week.Monday].Sections()
	if len(sections[routine.Morning]) != 1 || !strings.Contains(sections[routine.Morning][0].Text, "Sleep") {
		t.Errorf("daily alias not resolved: %+v", sections[routine.Morning])
	}
}

// --- Parse ---

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not yaml list", "id: x"},
		{"missing id", "- mode: regular\n  days:\n    monday:\n      morning:\n        - text: a\n"},
		{"no tasks", "- id: x\n  mode: regular\n  days:\n    monday:\n      notes: hi\n"},
		{"duplicate id", "- id: x\n  mode: regular\n  days:\n    monday:\n      morning:\n        - text: a\n" +
			"- id: x\n  mode: hard\n  days:\n    monday:\n      morning:\n        - text: b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
