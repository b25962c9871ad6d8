package routine

import (
	"testing"

	"github.com/HendryAvila/weekplan/internal/custody"
	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

func TestResolveWeekInfo_ExceptionWins(t *testing.T) {
	ex := Structured(Exception{KidsWithYou: boolPtr(false)})
	r := &WeeklyRoutine{
		WeekStartDate: "2024-11-04",
		Mode:          mode.Hard,
		KidsWithUser:  boolPtr(true),
		WeekException: &ex,
	}
	info := ResolveWeekInfo(r, nil, "2024-11-04")

	if info.HasKids {
		t.Error("HasKids = true, want the exception's false")
	}
	if info.Mode != mode.Hard {
		t.Errorf("Mode = %s, want hard", info.Mode)
	}
	if info.ModeDisplay.Name != "Recovery" {
		t.Errorf("ModeDisplay.Name = %q, want Recovery", info.ModeDisplay.Name)
	}
	if info.CustodySource != SourceException {
		t.Errorf("CustodySource = %q", info.CustodySource)
	}
	if info.CustodyLabel != custody.Label(false) {
		t.Errorf("CustodyLabel = %q", info.CustodyLabel)
	}
}

func TestResolveWeekInfo_Precedence(t *testing.T) {
	alternating := &custody.Settings{
		Pattern:                       custody.PatternAlternating,
		ReferenceWeekStart:            "2024-11-04",
		CurrentWeekHasKidsAtReference: true,
	}
	legacy := LegacyNote("kidsWithYou: false")
	noKids := Structured(Exception{Summary: "no override"})

	tests := []struct {
		name       string
		routine    *WeeklyRoutine
		key        week.Key
		wantKids   bool
		wantSource string
	}{
		{"no routine, schedule off week", nil, "2024-11-11", false, SourceSchedule},
		{"no routine, schedule on week", nil, "2024-11-18", true, SourceSchedule},
		{"routine without kids flag", &WeeklyRoutine{WeekStartDate: "2024-11-11"}, "2024-11-11", true, SourceRoutine},
		{"routine flag beats schedule", &WeeklyRoutine{WeekStartDate: "2024-11-04", KidsWithUser: boolPtr(false)}, "2024-11-04", false, SourceRoutine},
		{"legacy note is not parsed", &WeeklyRoutine{WeekStartDate: "2024-11-04", KidsWithUser: boolPtr(true), WeekException: &legacy}, "2024-11-04", true, SourceRoutine},
		{"exception without kids field", &WeeklyRoutine{WeekStartDate: "2024-11-04", KidsWithUser: boolPtr(false), WeekException: &noKids}, "2024-11-04", false, SourceRoutine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ResolveWeekInfo(tt.routine, alternating, tt.key)
			if info.HasKids != tt.wantKids {
				t.Errorf("HasKids = %v, want %v", info.HasKids, tt.wantKids)
			}
			if info.CustodySource != tt.wantSource {
				t.Errorf("CustodySource = %q, want %q", info.CustodySource, tt.wantSource)
			}
		})
	}
}

func TestResolveWeekInfo_LegacyNoteExposed(t *testing.T) {
	legacy := LegacyNote("Grandma visiting")
	info := ResolveWeekInfo(&WeeklyRoutine{WeekStartDate: "2024-11-04", WeekException: &legacy}, nil, "2024-11-04")
	if info.ExceptionNote != "Grandma visiting" || info.Exception != nil {
		t.Errorf("note = %q, exception = %+v", info.ExceptionNote, info.Exception)
	}
}

func TestResolveWeekInfo_UnknownModeIsRegular(t *testing.T) {
	info := ResolveWeekInfo(&WeeklyRoutine{WeekStartDate: "2024-11-04", Mode: "chaos"}, nil, "2024-11-04")
	if info.Mode != mode.Regular || info.ModeDisplay.Name != "Regular" {
		t.Errorf("mode = %s, display = %q", info.Mode, info.ModeDisplay.Name)
	}
}
