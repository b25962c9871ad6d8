package routine

import (
	"errors"
	"testing"
	"time"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

func TestInstantiate_SingleSeed(t *testing.T) {
	fixedClock(t, time.Date(2024, 11, 4, 8, 0, 0, 0, time.UTC))

	tpl := &Template{Days: map[week.Weekday]TemplateDay{
		week.Monday: {Morning: []Seed{{Text: "Wake kids"}}},
	}}
	r, err := Instantiate(tpl, "2024-11-04")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	mon, ok := r.DailyRoutines[week.Monday]
	if !ok {
		t.Fatal("monday missing")
	}
	morning := mon.Tasks[Morning]
	if len(morning) != 1 || morning[0].Text != "Wake kids" || morning[0].Completed || morning[0].ID == "" {
		t.Errorf("morning = %+v", morning)
	}
	for _, sec := range []Section{AfterSchool, Evening, ParentTasks} {
		tasks, ok := mon.Tasks[sec]
		if !ok {
			t.Errorf("section %s missing", sec)
		}
		if tasks == nil || len(tasks) != 0 {
			t.Errorf("section %s = %#v, want empty non-nil list", sec, tasks)
		}
	}
	if len(r.DailyRoutines) != 1 {
		t.Errorf("days = %d, want only the template's days", len(r.DailyRoutines))
	}
	if r.WeekEndDate != "2024-11-10" {
		t.Errorf("WeekEndDate = %s, want 2024-11-10", r.WeekEndDate)
	}
	if r.Mode != mode.Regular {
		t.Errorf("Mode = %s, want regular for a template without a mode", r.Mode)
	}
	if r.CreatedAt == "" || r.CreatedAt != r.UpdatedAt {
		t.Errorf("timestamps = %q / %q", r.CreatedAt, r.UpdatedAt)
	}
	if mon.Date != "2024-11-04" {
		t.Errorf("monday date = %q", mon.Date)
	}
}

func TestInstantiate_LengthsAndUniqueIDs(t *testing.T) {
	tpl := &Template{
		ID:          "hard-with-kids",
		Mode:        mode.Hard,
		KidsPresent: true,
		Days: map[week.Weekday]TemplateDay{
			week.Monday: {
				Morning:     []Seed{{Text: "Breakfast"}, {Text: "Backpacks"}},
				AfterSchool: []Seed{{Text: "Snack"}},
				Evening:     []Seed{{Text: "Dinner"}, {Text: "Bath"}, {Text: "Bed"}},
				ParentTasks: []Seed{{Text: "Laundry"}},
			},
			week.Saturday: {
				Daily: []Seed{{Text: "Pancakes"}},
				Tasks: []Seed{{Text: "Movie night"}},
				Notes: "Slow day",
			},
		},
	}
	r, err := Instantiate(tpl, "2024-11-04")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if r.Mode != mode.Hard || r.KidsWithUser == nil || !*r.KidsWithUser {
		t.Errorf("mode/kids not copied: %s %v", r.Mode, r.KidsWithUser)
	}

	seen := map[string]bool{}
	for d, tday := range tpl.Days {
		want := tday.Sections()
		got := r.DailyRoutines[d]
		for _, sec := range Sections {
			if len(got.Tasks[sec]) != len(want[sec]) {
				t.Errorf("%s/%s: %d tasks, want %d", d, sec, len(got.Tasks[sec]), len(want[sec]))
			}
			for _, task := range got.Tasks[sec] {
				if task.Completed {
					t.Errorf("%s/%s: task %q completed", d, sec, task.Text)
				}
				if seen[task.ID] {
					t.Errorf("duplicate id %q", task.ID)
				}
				seen[task.ID] = true
			}
		}
	}

	sat := r.DailyRoutines[week.Saturday]
	if sat.Tasks[Morning][0].Text != "Pancakes" {
		t.Errorf("daily alias not mapped to morning: %+v", sat.Tasks[Morning])
	}
	if sat.Tasks[Evening][0].Text != "Movie night" {
		t.Errorf("tasks alias not appended to evening: %+v", sat.Tasks[Evening])
	}
	if sat.Notes != "Slow day" {
		t.Errorf("notes = %q", sat.Notes)
	}
}

func TestInstantiate_TwiceSameContentDifferentIDs(t *testing.T) {
	tpl := &Template{Days: map[week.Weekday]TemplateDay{
		week.Tuesday: {Evening: []Seed{{Text: "Dinner"}, {Text: "Bed"}}},
	}}
	a, err := Instantiate(tpl, "2024-11-04")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Instantiate(tpl, "2024-11-04")
	if err != nil {
		t.Fatal(err)
	}
	at, bt := a.DailyRoutines[week.Tuesday].Tasks[Evening], b.DailyRoutines[week.Tuesday].Tasks[Evening]
	for i := range at {
		if at[i].Text != bt[i].Text {
			t.Errorf("content differs at %d", i)
		}
		if at[i].ID == bt[i].ID {
			t.Errorf("ids should differ between instances, both %q", at[i].ID)
		}
	}
}

func TestInstantiate_DuplicateIDIsRejected(t *testing.T) {
	orig := newID
	newID = func() string { return "same" }
	t.Cleanup(func() { newID = orig })

	tpl := &Template{Days: map[week.Weekday]TemplateDay{
		week.Monday: {Morning: []Seed{{Text: "a"}, {Text: "b"}}},
	}}
	if _, err := Instantiate(tpl, "2024-11-04"); !errors.Is(err, ErrInvariant) {
		t.Errorf("err = %v, want ErrInvariant", err)
	}
}

func TestInstantiate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		tpl  *Template
		key  week.Key
	}{
		{"nil template", nil, "2024-11-04"},
		{"no seeds", &Template{Days: map[week.Weekday]TemplateDay{week.Monday: {Notes: "only notes"}}}, "2024-11-04"},
		{"no days", &Template{}, "2024-11-04"},
		{"bad weekday", &Template{Days: map[week.Weekday]TemplateDay{"funday": {Morning: []Seed{{Text: "x"}}}}}, "2024-11-04"},
		{"non-monday key", &Template{Days: map[week.Weekday]TemplateDay{week.Monday: {Morning: []Seed{{Text: "x"}}}}}, "2024-11-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Instantiate(tt.tpl, tt.key); !errors.Is(err, ErrInvariant) {
				t.Errorf("err = %v, want ErrInvariant", err)
			}
		})
	}
}

func TestTemplateValidate(t *testing.T) {
	ok := &Template{ID: "x", Mode: mode.Hard, Days: map[week.Weekday]TemplateDay{week.Friday: {Evening: []Seed{{Text: "Pizza"}}}}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	noID := *ok
	noID.ID = ""
	if err := noID.Validate(); !errors.Is(err, ErrInvariant) {
		t.Errorf("missing id: err = %v", err)
	}
	badMode := *ok
	badMode.Mode = "chaos"
	if err := badMode.Validate(); !errors.Is(err, ErrInvariant) {
		t.Errorf("bad mode: err = %v", err)
	}
}
