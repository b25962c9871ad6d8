package routine

import (
	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

// Instantiate expands a template into a fresh routine for week k.
//
// Every weekday present in the template gets all four sections, empty when
// the template has no seeds for them. Every task gets a new id and starts
// uncompleted, so instantiating twice yields the same content with
// different ids. Replacing a stored routine with a new instance discards
// its completion state.
func Instantiate(t *Template, k week.Key) (*WeeklyRoutine, error) {
	if t == nil {
		return nil, invariantf("template is nil")
	}
	if !k.Valid() {
		return nil, invariantf("week key %q is not a Monday date", k)
	}
	if err := t.checkDays(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	makeTasks := func(seeds []Seed) ([]Task, error) {
		tasks := make([]Task, 0, len(seeds))
		for _, s := range seeds {
			id := newID()
			if seen[id] {
				return nil, invariantf("duplicate task id %q while instantiating template %q", id, t.ID)
			}
			seen[id] = true
			tasks = append(tasks, Task{ID: id, Text: s.Text, Completed: false})
		}
		return tasks, nil
	}

	days := make(map[week.Weekday]DayRoutine, len(t.Days))
	// Walk days in week order so id generation is deterministic under test.
	for _, d := range week.Weekdays {
		tday, ok := t.Days[d]
		if !ok {
			continue
		}
		sections := tday.Sections()
		day := DayRoutine{
			Date:  k.Date(d).Format(week.Layout),
			Tasks: make(map[Section][]Task, len(Sections)),
			Notes: tday.Notes,
		}
		for _, sec := range Sections {
			tasks, err := makeTasks(sections[sec])
			if err != nil {
				return nil, err
			}
			day.Tasks[sec] = tasks
		}
		days[d] = day
	}

	kids := t.KidsPresent
	now := timestamp()
	return &WeeklyRoutine{
		ID:            string(k),
		WeekStartDate: k,
		WeekEndDate:   k.End(),
		Mode:          mode.Normalize(t.Mode),
		KidsWithUser:  &kids,
		DailyRoutines: days,
		PrepTasks:     []PrepTask{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
