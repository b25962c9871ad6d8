// Package custody decides whether the children are present in a given week.
//
// Settings are plain values supplied by the caller once per request; this
// package never reads them from a global. Resolution is a pure function and
// never fails: missing or malformed settings mean "kids present".
package custody

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/weekplan/internal/week"
)

// Pattern selects how presence is computed.
type Pattern string

const (
	PatternNone        Pattern = "none"
	PatternAlternating Pattern = "alternating"
	PatternSpecific    Pattern = "specific"
)

// Handover defaults, used when settings leave them blank.
const (
	DefaultHandoverLocation = "school"
	DefaultPickupTime       = "4:30pm"
	DefaultDropoffTime      = "9am"
)

// Settings is the user's custody configuration.
type Settings struct {
	Pattern                       Pattern        `json:"pattern"`
	ReferenceWeekStart            week.Key       `json:"referenceWeekStart,omitempty"`
	CurrentWeekHasKidsAtReference bool           `json:"currentWeekHasKidsAtReference"`
	SpecificDays                  []week.Weekday `json:"specificDays,omitempty"`
	HandoverDay                   week.Weekday   `json:"handoverDay,omitempty"`
	HandoverLocation              string         `json:"handoverLocation,omitempty"`
	PickupTime                    string         `json:"pickupTime,omitempty"`
	DropoffTime                   string         `json:"dropoffTime,omitempty"`
	Notes                         string         `json:"notes,omitempty"`
}

// Default returns settings meaning "children always present".
func Default() *Settings {
	return &Settings{Pattern: PatternNone, CurrentWeekHasKidsAtReference: true}
}

// rawSettings accepts both the current field names and the ones older
// clients wrote (custodyType, weekStartDate, currentWeekHasKids).
type rawSettings struct {
	Pattern                       string   `json:"pattern"`
	CustodyType                   string   `json:"custodyType"`
	ReferenceWeekStart            string   `json:"referenceWeekStart"`
	WeekStartDate                 string   `json:"weekStartDate"`
	CurrentWeekHasKidsAtReference *bool    `json:"currentWeekHasKidsAtReference"`
	CurrentWeekHasKids            *bool    `json:"currentWeekHasKids"`
	SpecificDays                  []string `json:"specificDays"`
	HandoverDay                   string   `json:"handoverDay"`
	HandoverLocation              string   `json:"handoverLocation"`
	PickupTime                    string   `json:"pickupTime"`
	DropoffTime                   string   `json:"dropoffTime"`
	Notes                         string   `json:"notes"`
}

// Parse decodes a settings blob. It never fails: ok is false when the blob
// was unusable and the defaults were returned instead. An empty blob is
// treated as "no custody sharing" and reported ok.
func Parse(data []byte) (s *Settings, ok bool) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Default(), true
	}
	var raw rawSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return Default(), false
	}
	return raw.normalize()
}

func (r rawSettings) normalize() (*Settings, bool) {
	s := Default()
	s.HandoverLocation = r.HandoverLocation
	s.PickupTime = r.PickupTime
	s.DropoffTime = r.DropoffTime
	s.Notes = r.Notes
	if d, err := week.ParseWeekday(r.HandoverDay); err == nil {
		s.HandoverDay = d
	}

	switch r.CurrentWeekHasKidsAtReference {
	case nil:
		if r.CurrentWeekHasKids != nil {
			s.CurrentWeekHasKidsAtReference = *r.CurrentWeekHasKids
		}
	default:
		s.CurrentWeekHasKidsAtReference = *r.CurrentWeekHasKidsAtReference
	}

	pattern := r.Pattern
	if pattern == "" {
		pattern = r.CustodyType
	}
	switch Pattern(strings.ToLower(pattern)) {
	case "", PatternNone, "no":
		return s, true
	case PatternAlternating:
		ref := r.ReferenceWeekStart
		if ref == "" {
			ref = r.WeekStartDate
		}
		key, err := week.KeyForDate(ref)
		if err != nil {
			return s, false
		}
		s.Pattern = PatternAlternating
		s.ReferenceWeekStart = key
		return s, true
	case PatternSpecific:
		s.Pattern = PatternSpecific
		ok := true
		for _, name := range r.SpecificDays {
			d, err := week.ParseWeekday(name)
			if err != nil {
				ok = false
				continue
			}
			s.SpecificDays = appendUnique(s.SpecificDays, d)
		}
		return s, ok
	default:
		return s, false
	}
}

// Validate checks settings before they are stored. Resolution tolerates
// anything; storage does not.
func (s *Settings) Validate() error {
	switch s.Pattern {
	case "", PatternNone:
		return nil
	case PatternAlternating:
		if !s.ReferenceWeekStart.Valid() {
			return fmt.Errorf("alternating custody needs a Monday referenceWeekStart, got %q", s.ReferenceWeekStart)
		}
		return nil
	case PatternSpecific:
		if len(s.SpecificDays) == 0 {
			return fmt.Errorf("specific custody needs at least one day in specificDays")
		}
		for _, d := range s.SpecificDays {
			if !d.Valid() {
				return fmt.Errorf("invalid weekday %q in specificDays", d)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid custody pattern %q: must be one of: none, alternating, specific", s.Pattern)
	}
}

// Result is the outcome of resolving custody for one week.
type Result struct {
	Pattern Pattern `json:"pattern"`
	// HasKids is the week-level answer. Under the specific pattern it is
	// true when any day of the week is a custody day.
	HasKids bool `json:"has_kids"`
	// KidsOnDate is the answer for the date passed to Resolve.
	KidsOnDate   bool           `json:"kids_on_date"`
	Days         []week.Weekday `json:"days,omitempty"`
	Display      string         `json:"display"`
	HandoverNote string         `json:"handover_note,omitempty"`
}

// Resolve decides presence for week k. on is the caller's query date; it only
// matters for the specific pattern and may be zero, in which case the
// week-level answer is used.
func Resolve(s *Settings, k week.Key, on time.Time) Result {
	if s == nil {
		s = Default()
	}
	switch s.Pattern {
	case PatternAlternating:
		if !s.ReferenceWeekStart.Valid() || !k.Valid() {
			return kidsPresent()
		}
		has := alternatingHasKids(s, k)
		r := Result{
			Pattern:    PatternAlternating,
			HasKids:    has,
			KidsOnDate: has,
		}
		if has {
			r.Display = "👨‍👩‍👧‍👦 Kids with you Mon afternoon - Mon morning"
			r.HandoverNote = fmt.Sprintf("Handover: %s at %s (pick up %s, drop off next %s %s)",
				s.handoverDayName(), s.location(), s.pickup(), s.handoverDayName(), s.dropoff())
		} else {
			r.Display = "🏠 Kids at their other home this week"
			r.HandoverNote = fmt.Sprintf("Handover: Next %s at %s (drop off %s)",
				s.handoverDayName(), s.location(), s.dropoff())
		}
		return r
	case PatternSpecific:
		if len(s.SpecificDays) == 0 {
			return kidsPresent()
		}
		r := Result{
			Pattern: PatternSpecific,
			HasKids: true,
			Days:    append([]week.Weekday(nil), s.SpecificDays...),
			Display: "👨‍👩‍👧‍👦 Kids with you on " + dayList(s.SpecificDays),
		}
		r.KidsOnDate = r.HasKids
		if !on.IsZero() {
			r.KidsOnDate = HasKidsOn(s, on)
		}
		return r
	default:
		return kidsPresent()
	}
}

// HasKidsOn answers presence for a single calendar date.
func HasKidsOn(s *Settings, on time.Time) bool {
	if s == nil {
		return true
	}
	switch s.Pattern {
	case PatternSpecific:
		if len(s.SpecificDays) == 0 {
			return true
		}
		d := week.WeekdayOf(on)
		for _, sd := range s.SpecificDays {
			if sd == d {
				return true
			}
		}
		return false
	case PatternAlternating:
		if !s.ReferenceWeekStart.Valid() {
			return true
		}
		return alternatingHasKids(s, week.KeyOf(on))
	default:
		return true
	}
}

// Label is the short custody line shown next to a week.
func Label(hasKids bool) string {
	if hasKids {
		return "👶 Kids with you this week"
	}
	return "🏠 Kids away this week"
}

// alternatingHasKids applies the parity rule with a floor-based modulo so
// weeks before the reference follow the same two-week cycle.
func alternatingHasKids(s *Settings, k week.Key) bool {
	diff := k.WeeksSince(s.ReferenceWeekStart)
	even := floorMod(diff, 2) == 0
	if s.CurrentWeekHasKidsAtReference {
		return even
	}
	return !even
}

func floorMod(a, n int) int {
	return ((a % n) + n) % n
}

func kidsPresent() Result {
	return Result{
		Pattern:    PatternNone,
		HasKids:    true,
		KidsOnDate: true,
		Display:    "👨‍👩‍👧‍👦 Kids with you",
	}
}

func (s *Settings) handoverDayName() string {
	d := s.HandoverDay
	if !d.Valid() {
		d = week.Monday
	}
	return titleCase(string(d))
}

func (s *Settings) location() string {
	if s.HandoverLocation == "" {
		return DefaultHandoverLocation
	}
	return s.HandoverLocation
}

func (s *Settings) pickup() string {
	if s.PickupTime == "" {
		return DefaultPickupTime
	}
	return s.PickupTime
}

func (s *Settings) dropoff() string {
	if s.DropoffTime == "" {
		return DefaultDropoffTime
	}
	return s.DropoffTime
}

func dayList(days []week.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range week.Weekdays {
		for _, sd := range days {
			if sd == d {
				names = append(names, titleCase(string(d)))
				break
			}
		}
	}
	return strings.Join(names, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func appendUnique(days []week.Weekday, d week.Weekday) []week.Weekday {
	for _, existing := range days {
		if existing == d {
			return days
		}
	}
	return append(days, d)
}
