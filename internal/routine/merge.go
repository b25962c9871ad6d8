package routine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

// Field is one key of a partial update. It distinguishes three states:
// absent (Set is false, the existing value is kept), null (Null is true,
// the key is removed) and a value (replaces the existing value).
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// SetTo returns a field that replaces the existing value with v.
func SetTo[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Delete returns a field that removes the key.
func Delete[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// IsZero reports an absent field, so `omitzero` drops it when encoding.
func (f Field[T]) IsZero() bool { return !f.Set }

// MarshalJSON implements json.Marshaler.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON is only called for keys present in the input, which is
// what marks the field as set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	var zero T
	f.Value = zero
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// Patch is a partial update to a WeeklyRoutine. Top-level keys only:
// nested values such as DailyRoutines replace the stored value wholesale.
//
// ID, CreatedAt and UpdatedAt are accepted so clients can send back a whole
// routine, but the merger owns them and ignores what the patch says.
// IdempotencyKey is a request-correlation token and is never stored.
type Patch struct {
	ID             Field[string]                      `json:"id,omitzero"`
	WeekStartDate  Field[week.Key]                    `json:"weekStartDate,omitzero"`
	WeekEndDate    Field[week.Key]                    `json:"weekEndDate,omitzero"`
	Mode           Field[mode.Mode]                   `json:"mode,omitzero"`
	KidsWithUser   Field[bool]                        `json:"kidsWithUser,omitzero"`
	DailyRoutines  Field[map[week.Weekday]DayRoutine] `json:"dailyRoutines,omitzero"`
	WeekException  Field[WeekException]               `json:"weekException,omitzero"`
	PrepTasks      Field[[]PrepTask]                  `json:"prepTasks,omitzero"`
	Notes          Field[string]                      `json:"notes,omitzero"`
	CreatedAt      Field[string]                      `json:"createdAt,omitzero"`
	UpdatedAt      Field[string]                      `json:"updatedAt,omitzero"`
	IdempotencyKey Field[string]                      `json:"idempotencyKey,omitzero"`
}

// DecodePatch parses a JSON object into a Patch. Unknown top-level keys
// are rejected: storing them would silently change the record's shape.
func DecodePatch(data []byte) (Patch, error) {
	var p Patch
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return p, invariantf("patch must be a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Patch{}, fmt.Errorf("%w: decoding patch: %v", ErrInvariant, err)
	}
	return p, nil
}

// Merge applies p to existing and returns the result as a new value;
// existing is not modified. k is the storage key the result will be written
// under.
//
// Rules, in order:
//  1. A nil existing routine is replaced by a minimal one for k (regular
//     mode, no days), so merging never fails for a missing week.
//  2. Null fields delete the key; absent fields keep the existing value.
//  3. Set fields overwrite the existing value (shallow, top-level).
//  4. CreatedAt is kept from existing or set now; UpdatedAt is always now.
//  5. IdempotencyKey is dropped.
//
// Merge does not keep mode and tasks consistent with each other. Callers
// wanting a fresh task list after a mode switch instantiate a template.
func Merge(existing *WeeklyRoutine, k week.Key, p Patch) (*WeeklyRoutine, error) {
	if !k.Valid() {
		return nil, invariantf("week key %q is not a Monday date", k)
	}
	if err := validatePatch(k, p); err != nil {
		return nil, err
	}

	var out *WeeklyRoutine
	if existing == nil {
		out = &WeeklyRoutine{
			WeekStartDate: k,
			WeekEndDate:   k.End(),
			Mode:          mode.Regular,
			DailyRoutines: map[week.Weekday]DayRoutine{},
		}
	} else {
		if existing.WeekStartDate != k {
			return nil, invariantf("stored routine for %s has weekStartDate %q", k, existing.WeekStartDate)
		}
		out = existing.Clone()
	}

	apply(&out.WeekEndDate, p.WeekEndDate)
	apply(&out.Mode, p.Mode)
	applyPtr(&out.KidsWithUser, p.KidsWithUser)
	apply(&out.DailyRoutines, p.DailyRoutines)
	applyPtr(&out.WeekException, p.WeekException)
	apply(&out.PrepTasks, p.PrepTasks)
	apply(&out.Notes, p.Notes)

	// Values taken from the patch must not alias the caller's data.
	out.DailyRoutines = cloneDays(out.DailyRoutines)
	out.PrepTasks = assignPrepIDs(clonePrep(out.PrepTasks))
	if out.WeekException != nil {
		ex := out.WeekException.clone()
		if ex.Override != nil {
			ex.Override.PrepTasks = assignPrepIDs(ex.Override.PrepTasks)
		}
		out.WeekException = &ex
	}

	now := timestamp()
	out.ID = string(k)
	if existing == nil || existing.CreatedAt == "" {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	return out, nil
}

func apply[T any](dst *T, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		var zero T
		*dst = zero
		return
	}
	*dst = f.Value
}

func applyPtr[T any](dst **T, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	v := f.Value
	*dst = &v
}

// validatePatch rejects patches that would store an inconsistent record.
func validatePatch(k week.Key, p Patch) error {
	if p.WeekStartDate.Set {
		if p.WeekStartDate.Null {
			return invariantf("weekStartDate cannot be removed")
		}
		if p.WeekStartDate.Value != k {
			return invariantf("patch weekStartDate %q does not match week %s", p.WeekStartDate.Value, k)
		}
	}
	if p.WeekEndDate.Set && !p.WeekEndDate.Null && p.WeekEndDate.Value != k.End() {
		return invariantf("weekEndDate %q must be %s for week %s", p.WeekEndDate.Value, k.End(), k)
	}
	if p.Mode.Set && !p.Mode.Null {
		if err := mode.Validate(p.Mode.Value); err != nil {
			return invariantf("%v", err)
		}
	}
	if p.DailyRoutines.Set && !p.DailyRoutines.Null {
		if err := validateDays(p.DailyRoutines.Value); err != nil {
			return err
		}
	}
	if p.PrepTasks.Set && !p.PrepTasks.Null {
		if err := validatePrepIDs(p.PrepTasks.Value); err != nil {
			return err
		}
	}
	if p.WeekException.Set && !p.WeekException.Null {
		if ex, ok := p.WeekException.Value.Structured(); ok {
			if err := validatePrepIDs(ex.PrepTasks); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateDays(days map[week.Weekday]DayRoutine) error {
	seen := make(map[string]bool)
	for d, day := range days {
		if !d.Valid() {
			return invariantf("unknown weekday %q in dailyRoutines", d)
		}
		for sec, tasks := range day.Tasks {
			if !sec.Valid() {
				return invariantf("unknown section %q on %s", sec, d)
			}
			for _, task := range tasks {
				if task.ID == "" {
					return invariantf("task %q on %s/%s has no id", task.Text, d, sec)
				}
				if seen[task.ID] {
					return invariantf("duplicate task id %q in dailyRoutines", task.ID)
				}
				seen[task.ID] = true
			}
		}
	}
	return nil
}

func validatePrepIDs(tasks []PrepTask) error {
	seen := make(map[string]bool)
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if seen[t.ID] {
			return invariantf("duplicate prep task id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// assignPrepIDs gives prep tasks without an id a fresh one.
func assignPrepIDs(tasks []PrepTask) []PrepTask {
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = "prep-" + newID()
		}
	}
	return tasks
}
