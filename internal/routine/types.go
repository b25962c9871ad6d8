// Package routine is the weekly routine engine.
//
// It owns the persisted shape of a week (WeeklyRoutine), expands reusable
// templates into concrete task lists, merges partial updates into stored
// routines and resolves what a week should look like to the user.
//
// Every function here is a pure computation over values. Nothing in this
// package performs I/O or holds shared state; storage and per-week
// serialization belong to the caller (see internal/store and internal/planner).
package routine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

var (
	// ErrNotFound reports a missing week, template, task, prep task or flag.
	ErrNotFound = errors.New("not found")
	// ErrInvariant reports input that would corrupt the stored shape.
	ErrInvariant = errors.New("invariant violation")
)

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// --- Sections ---

// Section names one of the four fixed task groups of a day.
type Section string

const (
	Morning     Section = "morning"
	AfterSchool Section = "afterSchool"
	Evening     Section = "evening"
	ParentTasks Section = "parentTasks"
)

// Sections lists the four sections in display order.
var Sections = []Section{Morning, AfterSchool, Evening, ParentTasks}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	sec := Section(s)
	if !sec.Valid() {
		return "", fmt.Errorf("invalid section %q: must be one of: morning, afterSchool, evening, parentTasks", s)
	}
	return sec, nil
}

// Valid reports whether s is one of the four sections.
func (s Section) Valid() bool {
	for _, sec := range Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// --- Core data structures ---

// Task is one checkable item of a day. ID is assigned at instantiation and
// never changes; Completed is the only field mutated afterwards.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// DayRoutine is one weekday's content.
type DayRoutine struct {
	Date  string             `json:"date,omitempty"`
	Tasks map[Section][]Task `json:"tasks"`
	Notes string             `json:"notes"`
	Mood  string             `json:"mood,omitempty"`
}

// PrepTask is a week-level preparation item. Its ids are independent of
// Task ids.
type PrepTask struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// UnmarshalJSON also accepts "completed", which older clients wrote
// instead of "done".
func (p *PrepTask) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Done      *bool  `json:"done"`
		Completed *bool  `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = raw.ID
	p.Text = raw.Text
	switch {
	case raw.Done != nil:
		p.Done = *raw.Done
	case raw.Completed != nil:
		p.Done = *raw.Completed
	default:
		p.Done = false
	}
	return nil
}

// WeeklyRoutine is the persisted record for one week, keyed by WeekStartDate.
type WeeklyRoutine struct {
	ID            string                      `json:"id,omitempty"`
	WeekStartDate week.Key                    `json:"weekStartDate"`
	WeekEndDate   week.Key                    `json:"weekEndDate,omitempty"`
	Mode          mode.Mode                   `json:"mode,omitempty"`
	KidsWithUser  *bool                       `json:"kidsWithUser,omitempty"`
	DailyRoutines map[week.Weekday]DayRoutine `json:"dailyRoutines,omitempty"`
	WeekException *WeekException              `json:"weekException,omitempty"`
	PrepTasks     []PrepTask                  `json:"prepTasks,omitempty"`
	Notes         string                      `json:"notes,omitempty"`
	CreatedAt     string                      `json:"createdAt,omitempty"`
	UpdatedAt     string                      `json:"updatedAt,omitempty"`
}

// EffectiveMode returns the routine's mode, reading a missing or unknown
// mode as regular.
func (r *WeeklyRoutine) EffectiveMode() mode.Mode {
	return mode.Normalize(r.Mode)
}

// Clone returns a deep copy of r.
func (r *WeeklyRoutine) Clone() *WeeklyRoutine {
	if r == nil {
		return nil
	}
	c := *r
	if r.KidsWithUser != nil {
		v := *r.KidsWithUser
		c.KidsWithUser = &v
	}
	c.DailyRoutines = cloneDays(r.DailyRoutines)
	if r.WeekException != nil {
		ex := r.WeekException.clone()
		c.WeekException = &ex
	}
	c.PrepTasks = clonePrep(r.PrepTasks)
	return &c
}

func cloneDays(days map[week.Weekday]DayRoutine) map[week.Weekday]DayRoutine {
	if days == nil {
		return nil
	}
	out := make(map[week.Weekday]DayRoutine, len(days))
	for d, day := range days {
		out[d] = day.clone()
	}
	return out
}

func (d DayRoutine) clone() DayRoutine {
	c := d
	if d.Tasks != nil {
		c.Tasks = make(map[Section][]Task, len(d.Tasks))
		for sec, tasks := range d.Tasks {
			c.Tasks[sec] = append([]Task{}, tasks...)
		}
	}
	return c
}

func clonePrep(tasks []PrepTask) []PrepTask {
	if tasks == nil {
		return nil
	}
	return append([]PrepTask{}, tasks...)
}

// --- Templates ---

// Seed is a template task: text only, no id or completion.
type Seed struct {
	Text string `json:"text" yaml:"text"`
}

// TemplateDay is one day of a template. Besides the four sections it
// accepts the aliases older templates used: daily (morning), day and
// afternoon (afterSchool), and tasks (appended to evening).
type TemplateDay struct {
	Morning     []Seed `json:"morning,omitempty" yaml:"morning,omitempty"`
	Daily       []Seed `json:"daily,omitempty" yaml:"daily,omitempty"`
	AfterSchool []Seed `json:"afterSchool,omitempty" yaml:"afterSchool,omitempty"`
	Day         []Seed `json:"day,omitempty" yaml:"day,omitempty"`
	Afternoon   []Seed `json:"afternoon,omitempty" yaml:"afternoon,omitempty"`
	Evening     []Seed `json:"evening,omitempty" yaml:"evening,omitempty"`
	Tasks       []Seed `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	ParentTasks []Seed `json:"parentTasks,omitempty" yaml:"parentTasks,omitempty"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Sections returns the day's seeds keyed by canonical section, resolving
// aliases. All four sections are present in the result.
func (d TemplateDay) Sections() map[Section][]Seed {
	return map[Section][]Seed{
		Morning:     firstNonEmpty(d.Morning, d.Daily),
		AfterSchool: firstNonEmpty(d.AfterSchool, d.Day, d.Afternoon),
		Evening:     append(append([]Seed{}, d.Evening...), d.Tasks...),
		ParentTasks: d.ParentTasks,
	}
}

func firstNonEmpty(lists ...[]Seed) []Seed {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

// Template is a reusable routine blueprint.
type Template struct {
	ID          string                       `json:"id" yaml:"id"`
	Name        string                       `json:"name" yaml:"name"`
	Description string                       `json:"description,omitempty" yaml:"description,omitempty"`
	Mode        mode.Mode                    `json:"mode" yaml:"mode"`
	KidsPresent bool                         `json:"kidsPresent" yaml:"kidsPresent"`
	Days        map[week.Weekday]TemplateDay `json:"days" yaml:"days"`
}

// Validate checks a template before it is stored.
func (t *Template) Validate() error {
	if t == nil {
		return invariantf("template is nil")
	}
	if t.ID == "" {
		return invariantf("template id is required")
	}
	if err := mode.Validate(t.Mode); err != nil {
		return invariantf("template %q: %v", t.ID, err)
	}
	return t.checkDays()
}

// checkDays verifies weekday names and that at least one section of one
// day has a seed.
func (t *Template) checkDays() error {
	seeds := 0
	for d, day := range t.Days {
		if !d.Valid() {
			return invariantf("template %q: unknown weekday %q", t.ID, d)
		}
		for _, list := range day.Sections() {
			seeds += len(list)
		}
	}
	if seeds == 0 {
		return invariantf("template %q has no tasks in any of the four sections", t.ID)
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	if t.Days != nil {
		c.Days = make(map[week.Weekday]TemplateDay, len(t.Days))
		for d, day := range t.Days {
			c.Days[d] = day.clone()
		}
	}
	return &c
}

func (d TemplateDay) clone() TemplateDay {
	cp := func(s []Seed) []Seed {
		if s == nil {
			return nil
		}
		return append([]Seed{}, s...)
	}
	return TemplateDay{
		Morning:     cp(d.Morning),
		Daily:       cp(d.Daily),
		AfterSchool: cp(d.AfterSchool),
		Day:         cp(d.Day),
		Afternoon:   cp(d.Afternoon),
		Evening:     cp(d.Evening),
		Tasks:       cp(d.Tasks),
		ParentTasks: cp(d.ParentTasks),
		Notes:       d.Notes,
	}
}
