package routine

import (
	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

// HardWeekFlag marks an upcoming week the user expects to be difficult,
// so it can be prepared for ahead of time. There is at most one flag per
// week; its id is derived from the week key.
type HardWeekFlag struct {
	ID            string    `json:"id"`
	WeekStartDate week.Key  `json:"weekStartDate"`
	Reason        string    `json:"reason"`
	ExpectedMode  mode.Mode `json:"expectedMode,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     string    `json:"createdAt,omitempty"`
	UpdatedAt     string    `json:"updatedAt,omitempty"`
}

// FlagID returns the id of the flag for week k.
func FlagID(k week.Key) string {
	return "flag-" + string(k)
}

// FlagUpdate holds partial update fields for a flag. Nil fields are kept.
type FlagUpdate struct {
	Reason       *string    `json:"reason,omitempty"`
	ExpectedMode *mode.Mode `json:"expectedMode,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// NewFlag builds a flag for week k.
func NewFlag(k week.Key, reason string, expected mode.Mode, notes string) (*HardWeekFlag, error) {
	if !k.Valid() {
		return nil, invariantf("week key %q is not a Monday date", k)
	}
	if reason == "" {
		return nil, invariantf("a hard week flag needs a reason")
	}
	if expected != "" {
		if err := mode.Validate(expected); err != nil {
			return nil, invariantf("%v", err)
		}
	}
	now := timestamp()
	return &HardWeekFlag{
		ID:            FlagID(k),
		WeekStartDate: k,
		Reason:        reason,
		ExpectedMode:  expected,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Apply returns f with u applied. The id and week never change.
func (f HardWeekFlag) Apply(u FlagUpdate) (*HardWeekFlag, error) {
	if u.Reason != nil {
		if *u.Reason == "" {
			return nil, invariantf("a hard week flag needs a reason")
		}
		f.Reason = *u.Reason
	}
	if u.ExpectedMode != nil {
		if *u.ExpectedMode != "" {
			if err := mode.Validate(*u.ExpectedMode); err != nil {
				return nil, invariantf("%v", err)
			}
		}
		f.ExpectedMode = *u.ExpectedMode
	}
	if u.Notes != nil {
		f.Notes = *u.Notes
	}
	f.UpdatedAt = timestamp()
	return &f, nil
}
