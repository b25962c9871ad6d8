package routine

import (
	"time"

	"github.com/HendryAvila/weekplan/internal/custody"
	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/week"
)

// Custody sources, in precedence order.
const (
	SourceException = "exception"
	SourceRoutine   = "routine"
	SourceSchedule  = "schedule"
)

// WeekInfo is the resolved view of a week: who is home, which mode, and
// how to present it.
type WeekInfo struct {
	WeekStartDate week.Key        `json:"week_start_date"`
	HasKids       bool            `json:"has_kids"`
	CustodyLabel  string          `json:"custody_label"`
	CustodySource string          `json:"custody_source"`
	Mode          mode.Mode       `json:"mode"`
	ModeDisplay   mode.Descriptor `json:"mode_display"`
	Exception     *Exception      `json:"exception,omitempty"`
	ExceptionNote string          `json:"exception_note,omitempty"`

	// Schedule is the live custody calculation. It may disagree with
	// HasKids when the routine or an exception overrides it.
	Schedule custody.Result `json:"schedule"`
}

// ResolveWeekInfo decides custody and mode display for week k.
//
// Precedence for HasKids:
//  1. a structured exception with KidsWithYou set;
//  2. the routine's own KidsWithUser (true when absent);
//  3. with no routine at all, the custody schedule.
//
// Mode always comes from the routine; exceptions never override it. A
// legacy string exception is free text only and is not consulted.
func ResolveWeekInfo(r *WeeklyRoutine, s *custody.Settings, k week.Key) WeekInfo {
	if r != nil && r.WeekStartDate.Valid() {
		k = r.WeekStartDate
	}
	sched := custody.Resolve(s, k, time.Time{})

	info := WeekInfo{
		WeekStartDate: k,
		Schedule:      sched,
		Mode:          mode.Regular,
	}

	switch {
	case r == nil:
		info.HasKids = sched.HasKids
		info.CustodySource = SourceSchedule
	default:
		info.Mode = r.EffectiveMode()
		info.HasKids = true
		info.CustodySource = SourceRoutine
		if r.KidsWithUser != nil {
			info.HasKids = *r.KidsWithUser
		}
		if r.WeekException != nil {
			if ex, ok := r.WeekException.Structured(); ok {
				info.Exception = ex
				if ex.KidsWithYou != nil {
					info.HasKids = *ex.KidsWithYou
					info.CustodySource = SourceException
				}
			} else if note, ok := r.WeekException.LegacyText(); ok {
				info.ExceptionNote = note
			}
		}
	}

	info.CustodyLabel = custody.Label(info.HasKids)
	info.ModeDisplay = mode.Describe(info.Mode, info.HasKids)
	return info
}
