// Package planner is the stateful front of the routine engine.
//
// It loads and saves through a store.Store and runs every read-modify-write
// of a week while holding that week's lock, so two concurrent updates of
// the same week are applied one after the other instead of the later one
// overwriting the earlier. Different weeks proceed in parallel.
package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/weekplan/internal/custody"
	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/store"
	"github.com/HendryAvila/weekplan/internal/templates"
	"github.com/HendryAvila/weekplan/internal/week"
)

// Service runs planner operations against a store.
type Service struct {
	store store.Store
	log   *zap.Logger
	loc   *time.Location
	now   func() time.Time
	locks *keyLock
}

// New creates a Service. A nil logger discards logs; a nil location means
// time.Local.
func New(st store.Store, logger *zap.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store: st,
		log:   logger,
		loc:   loc,
		now:   time.Now,
		locks: newKeyLock(),
	}
}

// LocalNow returns the current time in the configured timezone. Its
// calendar date is "today".
func (s *Service) LocalNow() time.Time {
	return s.now().In(s.loc)
}

// CurrentKey returns the key of the week containing today.
func (s *Service) CurrentKey() week.Key {
	return week.KeyOf(s.LocalNow())
}

// lockWeek serializes mutations of one week.
func (s *Service) lockWeek(k week.Key) func() {
	return s.locks.Lock("week:" + string(k))
}

// --- Routines ---

// Current returns the routine for the current week. A missing routine is
// reported as routine.ErrNotFound, never synthesized.
func (s *Service) Current() (*routine.WeeklyRoutine, error) {
	return s.Get(s.CurrentKey())
}

// Get returns the routine stored under k.
func (s *Service) Get(k week.Key) (*routine.WeeklyRoutine, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: week key %q is not a Monday date", routine.ErrInvariant, k)
	}
	return s.store.LoadRoutine(k)
}

// List returns every stored routine ordered by week.
func (s *Service) List() ([]routine.WeeklyRoutine, error) {
	return s.store.ListRoutines()
}

// Upsert merges p into the routine for k, creating it when missing.
func (s *Service) Upsert(k week.Key, p routine.Patch) (*routine.WeeklyRoutine, error) {
	return s.mutate(k, "upsert", true, func(r *routine.WeeklyRoutine) (*routine.WeeklyRoutine, error) {
		return routine.Merge(r, k, p)
	})
}

// StartWeek fills week k from the standard template for m. kidsPresent
// picks the custody variant; when nil the week's resolved custody is used.
//
// An existing routine is only replaced when overwrite is set, since
// re-instantiating discards every task's completion state. The replaced
// routine's exception, prep tasks, notes and creation time are kept.
func (s *Service) StartWeek(k week.Key, m mode.Mode, kidsPresent *bool, overwrite bool) (*routine.WeeklyRoutine, error) {
	if err := mode.Validate(m); err != nil {
		return nil, fmt.Errorf("%w: %v", routine.ErrInvariant, err)
	}
	return s.mutate(k, "start_week", true, func(existing *routine.WeeklyRoutine) (*routine.WeeklyRoutine, error) {
		if existing != nil && !overwrite {
			return nil, fmt.Errorf("%w: week %s already has a routine; set overwrite to replace it", routine.ErrInvariant, k)
		}

		var kids bool
		if kidsPresent != nil {
			kids = *kidsPresent
		} else {
			settings, _ := s.Settings()
			kids = routine.ResolveWeekInfo(existing, settings, k).HasKids
		}

		tpl, err := s.Template(mode.TemplateID(m, kids))
		if err != nil {
			return nil, err
		}
		// The stored template may carry another mode; the caller's choice wins.
		tpl.Mode = m
		tpl.KidsPresent = kids

		fresh, err := routine.Instantiate(tpl, k)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fresh.WeekException = existing.WeekException
			fresh.PrepTasks = existing.PrepTasks
			fresh.Notes = existing.Notes
			if existing.CreatedAt != "" {
				fresh.CreatedAt = existing.CreatedAt
			}
		}
		return fresh, nil
	})
}

// Delete removes the routine for k.
func (s *Service) Delete(k week.Key) error {
	if !k.Valid() {
		return fmt.Errorf("%w: week key %q is not a Monday date", routine.ErrInvariant, k)
	}
	unlock := s.lockWeek(k)
	defer unlock()

	if err := s.store.DeleteRoutine(k); err != nil {
		return err
	}
	s.log.Info("routine deleted", zap.String("op", "delete"), zap.String("week", string(k)))
	return nil
}

// ToggleTask flips one task's completion.
func (s *Service) ToggleTask(k week.Key, day week.Weekday, sec routine.Section, taskID string) (*routine.WeeklyRoutine, error) {
	return s.mutate(k, "toggle_task", false, func(r *routine.WeeklyRoutine) (*routine.WeeklyRoutine, error) {
		return routine.ToggleTask(r, day, sec, taskID)
	})
}

// TogglePrepTask flips one prep task's done flag.
func (s *Service) TogglePrepTask(k week.Key, taskID string) (*routine.WeeklyRoutine, error) {
	return s.mutate(k, "toggle_prep_task", false, func(r *routine.WeeklyRoutine) (*routine.WeeklyRoutine, error) {
		return routine.TogglePrepTask(r, taskID)
	})
}

// SetDayNotes replaces one day's notes and mood.
func (s *Service) SetDayNotes(k week.Key, day week.Weekday, notes, mood string) (*routine.WeeklyRoutine, error) {
	return s.mutate(k, "day_notes", false, func(r *routine.WeeklyRoutine) (*routine.WeeklyRoutine, error) {
		return routine.SetDayNotes(r, day, notes, mood)
	})
}

// PrepTasks returns the week's top-level prep task list.
func (s *Service) PrepTasks(k week.Key) ([]routine.PrepTask, error) {
	r, err := s.Get(k)
	if err != nil {
		return nil, err
	}
	if r.PrepTasks == nil {
		return []routine.PrepTask{}, nil
	}
	return r.PrepTasks, nil
}

// ReplacePrepTasks replaces the week's top-level prep task list. The
// routine must exist. Tasks without an id get one.
func (s *Service) ReplacePrepTasks(k week.Key, tasks []routine.PrepTask) ([]routine.PrepTask, error) {
	if tasks == nil {
		tasks = []routine.PrepTask{}
	}
	r, err := s.mutate(k, "replace_prep_tasks", false, func(r *routine.WeeklyRoutine) (*routine.WeeklyRoutine, error) {
		return routine.Merge(r, k, routine.Patch{PrepTasks: routine.SetTo(tasks)})
	})
	if err != nil {
		return nil, err
	}
	return r.PrepTasks, nil
}

// mutate runs fn on the stored routine for k under the week lock and saves
// the result. With create set a missing routine is passed to fn as nil;
// otherwise it is reported as routine.ErrNotFound.
func (s *Service) mutate(k week.Key, op string, create bool, fn func(*routine.WeeklyRoutine) (*routine.WeeklyRoutine, error)) (*routine.WeeklyRoutine, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: week key %q is not a Monday date", routine.ErrInvariant, k)
	}
	unlock := s.lockWeek(k)
	defer unlock()

	existing, err := s.store.LoadRoutine(k)
	if err != nil {
		if !errors.Is(err, routine.ErrNotFound) || !create {
			return nil, err
		}
		existing = nil
	}

	updated, err := fn(existing)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRoutine(updated); err != nil {
		return nil, fmt.Errorf("saving routine %s: %w", k, err)
	}
	s.log.Info("routine saved",
		zap.String("op", op),
		zap.String("week", string(k)),
		zap.String("updated_at", updated.UpdatedAt),
	)
	return updated, nil
}

// --- Week info ---

// WeekInfo resolves custody and mode display for k. A missing routine is
// not an error: the custody schedule decides.
func (s *Service) WeekInfo(k week.Key) (routine.WeekInfo, error) {
	if !k.Valid() {
		return routine.WeekInfo{}, fmt.Errorf("%w: week key %q is not a Monday date", routine.ErrInvariant, k)
	}
	r, err := s.store.LoadRoutine(k)
	if err != nil {
		if !errors.Is(err, routine.ErrNotFound) {
			return routine.WeekInfo{}, err
		}
		r = nil
	}
	settings, _ := s.Settings()
	return routine.ResolveWeekInfo(r, settings, k), nil
}

// TodayView is one calendar day: its routine content and who is home.
type TodayView struct {
	Date      string              `json:"date"`
	Weekday   week.Weekday        `json:"weekday"`
	KidsToday bool                `json:"kids_today"`
	Day       *routine.DayRoutine `json:"day,omitempty"`
	Week      routine.WeekInfo    `json:"week"`
}

// Today returns the view for the calendar date of on. The day's routine
// is nil when the week or the day has none.
func (s *Service) Today(on time.Time) (*TodayView, error) {
	k := week.KeyOf(on)
	info, err := s.WeekInfo(k)
	if err != nil {
		return nil, err
	}
	d := week.WeekdayOf(on)
	view := &TodayView{
		Date:      on.Format(week.Layout),
		Weekday:   d,
		KidsToday: info.HasKids,
		Week:      info,
	}
	if info.CustodySource == routine.SourceSchedule {
		settings, _ := s.Settings()
		view.KidsToday = custody.HasKidsOn(settings, on)
	}

	r, err := s.store.LoadRoutine(k)
	switch {
	case err == nil:
		if day, ok := r.DailyRoutines[d]; ok {
			view.Day = &day
		}
	case !errors.Is(err, routine.ErrNotFound):
		return nil, err
	}
	return view, nil
}

// --- Templates ---

// Template returns the template with the given id. Saved templates shadow
// built-in ones.
func (s *Service) Template(id string) (*routine.Template, error) {
	t, err := s.store.LoadTemplate(id)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, routine.ErrNotFound) {
		return nil, err
	}
	return templates.Lookup(id)
}

// Templates lists built-in and saved templates ordered by id, with saved
// templates replacing built-ins of the same id.
func (s *Service) Templates() ([]routine.Template, error) {
	builtin, err := templates.Builtin()
	if err != nil {
		return nil, err
	}
	saved, err := s.store.ListTemplates()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]routine.Template, len(builtin)+len(saved))
	for _, t := range builtin {
		byID[t.ID] = t
	}
	for _, t := range saved {
		byID[t.ID] = t
	}
	out := make([]routine.Template, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveTemplate stores t, replacing any saved template with its id.
func (s *Service) SaveTemplate(t *routine.Template) error {
	if err := s.store.SaveTemplate(t); err != nil {
		return err
	}
	s.log.Info("template saved", zap.String("op", "save_template"), zap.String("template", t.ID))
	return nil
}

// --- Custody settings ---

// Settings returns the stored custody settings. Unusable settings are
// logged and replaced by the defaults; ok reports whether that happened.
func (s *Service) Settings() (settings *custody.Settings, ok bool) {
	data, err := s.store.LoadSettings()
	if err != nil {
		s.log.Warn("custody settings unreadable, using defaults", zap.Error(err))
		return custody.Default(), false
	}
	settings, ok = custody.Parse(data)
	if !ok {
		s.log.Warn("custody settings malformed, using defaults", zap.Int("bytes", len(data)))
	}
	return settings, ok
}

// SaveSettings validates and stores custody settings.
func (s *Service) SaveSettings(settings *custody.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: custody settings are nil", routine.ErrInvariant)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", routine.ErrInvariant, err)
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding custody settings: %w", err)
	}
	unlock := s.locks.Lock("settings")
	defer unlock()
	if err := s.store.SaveSettings(data); err != nil {
		return err
	}
	s.log.Info("custody settings saved", zap.String("op", "save_settings"), zap.String("pattern", string(settings.Pattern)))
	return nil
}

// --- Hard-week flags ---

// FlagHardWeek flags week k, replacing an existing flag for it.
func (s *Service) FlagHardWeek(k week.Key, reason string, expected mode.Mode, notes string) (*routine.HardWeekFlag, error) {
	f, err := routine.NewFlag(k, reason, expected, notes)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock("flag:" + string(k))
	defer unlock()

	if old, err := s.store.LoadFlag(k); err == nil && old.CreatedAt != "" {
		f.CreatedAt = old.CreatedAt
	}
	if err := s.store.SaveFlag(f); err != nil {
		return nil, err
	}
	s.log.Info("hard week flagged", zap.String("op", "flag_hard_week"), zap.String("week", string(k)))
	return f, nil
}

// UpcomingFlags returns flags for the current week and later, ordered by
// week.
func (s *Service) UpcomingFlags() ([]routine.HardWeekFlag, error) {
	all, err := s.store.ListFlags()
	if err != nil {
		return nil, err
	}
	current := s.CurrentKey()
	out := make([]routine.HardWeekFlag, 0, len(all))
	for _, f := range all {
		if f.WeekStartDate >= current {
			out = append(out, f)
		}
	}
	return out, nil
}

// Flag returns the flag with the given id.
func (s *Service) Flag(id string) (*routine.HardWeekFlag, error) {
	k, err := flagKey(id)
	if err != nil {
		return nil, err
	}
	return s.store.LoadFlag(k)
}

// UpdateFlag applies u to the flag with the given id.
func (s *Service) UpdateFlag(id string, u routine.FlagUpdate) (*routine.HardWeekFlag, error) {
	k, err := flagKey(id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock("flag:" + string(k))
	defer unlock()

	f, err := s.store.LoadFlag(k)
	if err != nil {
		return nil, err
	}
	updated, err := f.Apply(u)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveFlag(updated); err != nil {
		return nil, err
	}
	s.log.Info("hard week flag updated", zap.String("op", "update_flag"), zap.String("week", string(k)))
	return updated, nil
}

// DeleteFlag removes the flag with the given id.
func (s *Service) DeleteFlag(id string) error {
	k, err := flagKey(id)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock("flag:" + string(k))
	defer unlock()

	if err := s.store.DeleteFlag(k); err != nil {
		return err
	}
	s.log.Info("hard week flag deleted", zap.String("op", "delete_flag"), zap.String("week", string(k)))
	return nil
}

// flagKey recovers the week key from a flag id. Malformed ids cannot
// name a flag, so they are reported as not found.
func flagKey(id string) (week.Key, error) {
	k, err := week.ParseKey(strings.TrimPrefix(id, "flag-"))
	if err != nil || !strings.HasPrefix(id, "flag-") {
		return "", fmt.Errorf("hard week flag %q: %w", id, routine.ErrNotFound)
	}
	return k, nil
}
