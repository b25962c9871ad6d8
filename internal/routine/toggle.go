package routine

import (
	"fmt"

	"github.com/HendryAvila/weekplan/internal/week"
)

// TogglePrepTask flips Done on the prep task with the given id.
//
// When the routine has a structured exception that carries the task, the
// exception's list is updated; otherwise the routine's own list is. The
// change goes through Merge, so timestamps follow the usual rules.
func TogglePrepTask(r *WeeklyRoutine, taskID string) (*WeeklyRoutine, error) {
	if r == nil {
		return nil, fmt.Errorf("routine: %w", ErrNotFound)
	}

	if r.WeekException != nil {
		if ex, ok := r.WeekException.Structured(); ok {
			if tasks, found := flipPrep(ex.PrepTasks, taskID); found {
				updated := *ex
				updated.PrepTasks = tasks
				return Merge(r, r.WeekStartDate, Patch{WeekException: SetTo(Structured(updated))})
			}
		}
	}

	if tasks, found := flipPrep(r.PrepTasks, taskID); found {
		return Merge(r, r.WeekStartDate, Patch{PrepTasks: SetTo(tasks)})
	}
	return nil, fmt.Errorf("prep task %q in week %s: %w", taskID, r.WeekStartDate, ErrNotFound)
}

func flipPrep(tasks []PrepTask, id string) ([]PrepTask, bool) {
	for i, t := range tasks {
		if t.ID == id {
			out := clonePrep(tasks)
			out[i].Done = !t.Done
			return out, true
		}
	}
	return nil, false
}

// ToggleTask flips Completed on one task of one day's section.
func ToggleTask(r *WeeklyRoutine, day week.Weekday, sec Section, taskID string) (*WeeklyRoutine, error) {
	if r == nil {
		return nil, fmt.Errorf("routine: %w", ErrNotFound)
	}
	dr, ok := r.DailyRoutines[day]
	if !ok {
		return nil, fmt.Errorf("%s in week %s: %w", day, r.WeekStartDate, ErrNotFound)
	}
	for i, t := range dr.Tasks[sec] {
		if t.ID != taskID {
			continue
		}
		days := cloneDays(r.DailyRoutines)
		updated := days[day]
		updated.Tasks[sec][i].Completed = !t.Completed
		days[day] = updated
		return Merge(r, r.WeekStartDate, Patch{DailyRoutines: SetTo(days)})
	}
	return nil, fmt.Errorf("task %q in %s/%s of week %s: %w", taskID, day, sec, r.WeekStartDate, ErrNotFound)
}

// SetDayNotes replaces the notes and mood of one day. An empty mood
// clears it.
func SetDayNotes(r *WeeklyRoutine, day week.Weekday, notes, mood string) (*WeeklyRoutine, error) {
	if r == nil {
		return nil, fmt.Errorf("routine: %w", ErrNotFound)
	}
	if !day.Valid() {
		return nil, invariantf("unknown weekday %q", day)
	}
	days := cloneDays(r.DailyRoutines)
	if days == nil {
		days = map[week.Weekday]DayRoutine{}
	}
	dr, ok := days[day]
	if !ok {
		dr = emptyDay(r.WeekStartDate, day)
	}
	dr.Notes = notes
	dr.Mood = mood
	days[day] = dr
	return Merge(r, r.WeekStartDate, Patch{DailyRoutines: SetTo(days)})
}

func emptyDay(k week.Key, d week.Weekday) DayRoutine {
	tasks := make(map[Section][]Task, len(Sections))
	for _, sec := range Sections {
		tasks[sec] = []Task{}
	}
	return DayRoutine{Date: k.Date(d).Format(week.Layout), Tasks: tasks}
}
