package routine

import (
	"bytes"
	"encoding/json"
)

// Exception is a structured week-level override. A non-nil KidsWithYou
// takes precedence over both the routine's KidsWithUser and the custody
// schedule.
type Exception struct {
	KidsWithYou   *bool      `json:"kidsWithYou,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	PrepTasks     []PrepTask `json:"prepTasks,omitempty"`
	ScheduleNotes string     `json:"scheduleNotes,omitempty"`
}

// WeekException holds either a legacy free-text note or a structured
// Exception, never both. Older records stored the exception as a bare
// string; that shape carries text only and is never read for custody.
type WeekException struct {
	Note     *string    `json:"-"`
	Override *Exception `json:"-"`
}

// LegacyNote wraps a free-text exception.
func LegacyNote(text string) WeekException {
	return WeekException{Note: &text}
}

// Structured wraps a structured exception.
func Structured(e Exception) WeekException {
	return WeekException{Override: &e}
}

// Structured returns the structured exception, if that is what w holds.
func (w WeekException) Structured() (*Exception, bool) {
	if w.Override == nil {
		return nil, false
	}
	return w.Override, true
}

// LegacyText returns the free-text note, if that is what w holds.
func (w WeekException) LegacyText() (string, bool) {
	if w.Override != nil || w.Note == nil {
		return "", false
	}
	return *w.Note, true
}

// MarshalJSON writes the structured form as an object and the legacy form
// as a string.
func (w WeekException) MarshalJSON() ([]byte, error) {
	if w.Override != nil {
		return json.Marshal(w.Override)
	}
	if w.Note != nil {
		return json.Marshal(*w.Note)
	}
	return []byte("null"), nil
}

// UnmarshalJSON reads an object as a structured exception and anything
// else as a legacy note. Objects that don't decode as an Exception are
// kept as a note with their raw text rather than rejected.
func (w *WeekException) UnmarshalJSON(data []byte) error {
	*w = WeekException{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		w.Note = &s
		return nil
	case len(trimmed) > 0 && trimmed[0] == '{':
		var e Exception
		if err := json.Unmarshal(trimmed, &e); err != nil {
			raw := string(trimmed)
			w.Note = &raw
			return nil
		}
		w.Override = &e
		return nil
	default:
		raw := string(trimmed)
		w.Note = &raw
		return nil
	}
}

func (w WeekException) clone() WeekException {
	var c WeekException
	if w.Note != nil {
		n := *w.Note
		c.Note = &n
	}
	if w.Override != nil {
		e := *w.Override
		if w.Override.KidsWithYou != nil {
			v := *w.Override.KidsWithYou
			e.KidsWithYou = &v
		}
		e.PrepTasks = clonePrep(w.Override.PrepTasks)
		c.Override = &e
	}
	return c
}
