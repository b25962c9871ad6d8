package routine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

func sampleRoutine() *WeeklyRoutine {
	summary := Structured(Exception{Summary: "x"})
	return &WeeklyRoutine{
		ID:            "2024-11-04",
		WeekStartDate: "2024-11-04",
		WeekEndDate:   "2024-11-10",
		Mode:          mode.Regular,
		KidsWithUser:  boolPtr(true),
		DailyRoutines: map[week.Weekday]DayRoutine{
			week.Monday: {
				Date: "2024-11-04",
				Tasks: map[Section][]Task{
					Morning:     {{ID: "t1", Text: "Wake kids"}},
					AfterSchool: {},
					Evening:     {{ID: "t2", Text: "Dinner", Completed: true}},
					ParentTasks: {},
				},
			},
		},
		WeekException: &summary,
		PrepTasks:     []PrepTask{{ID: "prep-1", Text: "Groceries"}},
		Notes:         "busy week",
		CreatedAt:     "2024-11-01T10:00:00Z",
		UpdatedAt:     "2024-11-01T10:00:00Z",
	}
}

func TestMerge_NullRemovesException(t *testing.T) {
	existing := &WeeklyRoutine{WeekStartDate: "2024-11-04", Mode: mode.Regular}
	ex := Structured(Exception{Summary: "x"})
	existing.WeekException = &ex

	p, err := DecodePatch([]byte(`{"weekException": null}`))
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	got, err := Merge(existing, "2024-11-04", p)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got.WeekException != nil {
		t.Errorf("WeekException = %+v, want removed", got.WeekException)
	}
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "weekException") {
		t.Errorf("encoded routine still has weekException: %s", data)
	}
	if existing.WeekException == nil {
		t.Error("Merge modified its input")
	}
}

func TestMerge_NullRemovesEachField(t *testing.T) {
	p, err := DecodePatch([]byte(`{"kidsWithUser": null, "prepTasks": null, "notes": null, "dailyRoutines": null}`))
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	got, err := Merge(sampleRoutine(), "2024-11-04", p)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got.KidsWithUser != nil || got.PrepTasks != nil || got.Notes != "" || got.DailyRoutines != nil {
		t.Errorf("fields not removed: %+v", got)
	}
	if got.WeekException == nil || got.Mode != mode.Regular {
		t.Error("absent fields were not kept")
	}
}

func TestMerge_EmptyPatchOnlyTouchesUpdatedAt(t *testing.T) {
	advance := fixedClock(t, time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC))
	advance(time.Hour)

	existing := sampleRoutine()
	got, err := Merge(existing, "2024-11-04", Patch{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if diff := cmp.Diff(existing, got, cmpopts.IgnoreFields(WeeklyRoutine{}, "UpdatedAt")); diff != "" {
		t.Errorf("empty patch changed the routine (-want +got):\n%s", diff)
	}
	if got.UpdatedAt != "2024-11-05T10:00:00Z" {
		t.Errorf("UpdatedAt = %q", got.UpdatedAt)
	}
	if got.CreatedAt != existing.CreatedAt {
		t.Errorf("CreatedAt changed: %q", got.CreatedAt)
	}
}

func TestMerge_DisjointPatchesCommute(t *testing.T) {
	fixedClock(t, time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC))

	a := Patch{Mode: SetTo(mode.Hard), Notes: Delete[string]()}
	b := Patch{
		KidsWithUser: SetTo(false),
		PrepTasks:    SetTo([]PrepTask{{ID: "prep-9", Text: "Pack bags"}}),
	}

	ab := mustMerge(t, mustMerge(t, sampleRoutine(), a), b)
	ba := mustMerge(t, mustMerge(t, sampleRoutine(), b), a)
	if diff := cmp.Diff(ab, ba); diff != "" {
		t.Errorf("A then B differs from B then A (-ab +ba):\n%s", diff)
	}
}

func mustMerge(t *testing.T, r *WeeklyRoutine, p Patch) *WeeklyRoutine {
	t.Helper()
	out, err := Merge(r, "2024-11-04", p)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	return out
}

func TestMerge_MissingRoutineIsCreated(t *testing.T) {
	fixedClock(t, time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC))

	got, err := Merge(nil, "2024-11-04", Patch{Notes: SetTo("first")})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := &WeeklyRoutine{
		ID:            "2024-11-04",
		WeekStartDate: "2024-11-04",
		WeekEndDate:   "2024-11-10",
		Mode:          mode.Regular,
		DailyRoutines: map[week.Weekday]DayRoutine{},
		Notes:         "first",
		CreatedAt:     "2024-11-05T09:00:00Z",
		UpdatedAt:     "2024-11-05T09:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("created routine mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_PatchValuesAreNotAliased(t *testing.T) {
	prep := []PrepTask{{ID: "p", Text: "Shop"}}
	got := mustMerge(t, nil, Patch{PrepTasks: SetTo(prep)})
	prep[0].Text = "changed"
	if got.PrepTasks[0].Text != "Shop" {
		t.Error("merged routine shares the patch's slice")
	}
}

func TestMerge_AssignsMissingPrepIDs(t *testing.T) {
	sequentialIDs(t)

	got := mustMerge(t, nil, Patch{
		PrepTasks:     SetTo([]PrepTask{{Text: "a"}, {ID: "keep", Text: "b"}}),
		WeekException: SetTo(Structured(Exception{PrepTasks: []PrepTask{{Text: "c"}}})),
	})
	if got.PrepTasks[0].ID != "prep-id-1" || got.PrepTasks[1].ID != "keep" {
		t.Errorf("prep ids = %+v", got.PrepTasks)
	}
	if got.WeekException.Override.PrepTasks[0].ID != "prep-id-2" {
		t.Errorf("exception prep ids = %+v", got.WeekException.Override.PrepTasks)
	}
}

func TestMerge_Invariants(t *testing.T) {
	dupDays := map[week.Weekday]DayRoutine{
		week.Monday:  {Tasks: map[Section][]Task{Morning: {{ID: "x", Text: "a"}}}},
		week.Tuesday: {Tasks: map[Section][]Task{Evening: {{ID: "x", Text: "b"}}}},
	}
	tests := []struct {
		name     string
		existing *WeeklyRoutine
		key      week.Key
		patch    Patch
	}{
		{"key not monday", nil, "2024-11-05", Patch{}},
		{"weekStartDate mismatch", nil, "2024-11-04", Patch{WeekStartDate: SetTo(week.Key("2024-11-11"))}},
		{"weekStartDate null", nil, "2024-11-04", Patch{WeekStartDate: Delete[week.Key]()}},
		{"weekEndDate wrong", nil, "2024-11-04", Patch{WeekEndDate: SetTo(week.Key("2024-11-09"))}},
		{"bad mode", nil, "2024-11-04", Patch{Mode: SetTo(mode.Mode("chaos"))}},
		{"bad weekday", nil, "2024-11-04", Patch{DailyRoutines: SetTo(map[week.Weekday]DayRoutine{"funday": {}})}},
		{"bad section", nil, "2024-11-04", Patch{DailyRoutines: SetTo(map[week.Weekday]DayRoutine{
			week.Monday: {Tasks: map[Section][]Task{"brunch": {}}},
		})}},
		{"task without id", nil, "2024-11-04", Patch{DailyRoutines: SetTo(map[week.Weekday]DayRoutine{
			week.Monday: {Tasks: map[Section][]Task{Morning: {{Text: "a"}}}},
		})}},
		{"duplicate task id", nil, "2024-11-04", Patch{DailyRoutines: SetTo(dupDays)}},
		{"duplicate prep id", nil, "2024-11-04", Patch{PrepTasks: SetTo([]PrepTask{{ID: "p"}, {ID: "p"}})}},
		{"stored under other key", sampleRoutine(), "2024-11-11", Patch{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Merge(tt.existing, tt.key, tt.patch); !errors.Is(err, ErrInvariant) {
				t.Errorf("err = %v, want ErrInvariant", err)
			}
		})
	}
}

func TestMerge_MatchingWeekStartDateIsAccepted(t *testing.T) {
	p, err := DecodePatch([]byte(`{"weekStartDate":"2024-11-04","weekEndDate":"2024-11-10","mode":"hardest"}`))
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	got := mustMerge(t, sampleRoutine(), p)
	if got.Mode != mode.Hardest {
		t.Errorf("Mode = %s", got.Mode)
	}
}

func TestDecodePatch(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty object", `{}`, false},
		{"full routine", `{"id":"2024-11-04","weekStartDate":"2024-11-04","createdAt":"a","updatedAt":"b","notes":"n"}`, false},
		{"idempotency key", `{"idempotencyKey":"abc","notes":"n"}`, false},
		{"unknown key", `{"colour":"blue"}`, true},
		{"array", `[]`, true},
		{"string", `"x"`, true},
		{"empty", ``, true},
		{"wrong type", `{"kidsWithUser":"yes"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePatch([]byte(tt.input))
			if tt.wantErr && !errors.Is(err, ErrInvariant) {
				t.Errorf("err = %v, want ErrInvariant", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecodePatch_ThreeStates(t *testing.T) {
	p, err := DecodePatch([]byte(`{"notes":"hi","kidsWithUser":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Notes.Set || p.Notes.Null || p.Notes.Value != "hi" {
		t.Errorf("notes = %+v", p.Notes)
	}
	if !p.KidsWithUser.Set || !p.KidsWithUser.Null {
		t.Errorf("kidsWithUser = %+v", p.KidsWithUser)
	}
	if p.Mode.Set {
		t.Errorf("mode = %+v, want absent", p.Mode)
	}
}

func TestMerge_IgnoresOwnedFieldsAndIdempotencyKey(t *testing.T) {
	fixedClock(t, time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC))

	p, err := DecodePatch([]byte(`{"id":"other","createdAt":"1999","updatedAt":"1999","idempotencyKey":"abc"}`))
	if err != nil {
		t.Fatal(err)
	}
	got := mustMerge(t, sampleRoutine(), p)
	if got.ID != "2024-11-04" || got.CreatedAt != "2024-11-01T10:00:00Z" || got.UpdatedAt != "2024-11-05T09:00:00Z" {
		t.Errorf("owned fields taken from patch: %+v", got)
	}
	data, _ := json.Marshal(got)
	if strings.Contains(string(data), "idempotencyKey") {
		t.Errorf("idempotencyKey was stored: %s", data)
	}
}

func TestPatch_EncodesOnlySetFields(t *testing.T) {
	p := Patch{Mode: SetTo(mode.Hard), WeekException: Delete[WeekException]()}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"mode":"hard","weekException":null}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}
