// Package week maps calendar dates onto canonical, Monday-aligned week keys.
//
// A Key is the ISO date (YYYY-MM-DD) of the Monday that starts a week. It is
// the identity every weekly routine is stored under.
//
// Keys are computed from the calendar date of the time.Time as given, in the
// time's own location. No timezone conversion happens here: callers that care
// about "today" in a particular zone convert before calling KeyOf. All
// arithmetic on keys is done on UTC midnights so DST transitions never shift
// a key by a day.
package week

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Layout is the date format used for keys and plain dates.
const Layout = "2006-01-02"

// Key is the Monday that starts a week, formatted as YYYY-MM-DD.
type Key string

// KeyOf returns the key of the week containing t.
// Monday is day 0 and Sunday day 6, so a Sunday belongs to the week that
// started six days earlier.
func KeyOf(t time.Time) Key {
	day := dateOnly(t)
	return Key(day.AddDate(0, 0, -daysSinceMonday(day)).Format(Layout))
}

// ParseKey parses s as a week key. The date must be a Monday.
func ParseKey(s string) (Key, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	if t.Weekday() != time.Monday {
		return "", fmt.Errorf("week key %q is a %s, not a Monday", s, t.Weekday())
	}
	return Key(t.Format(Layout)), nil
}

// ParseDate parses a YYYY-MM-DD date into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// KeyForDate parses any YYYY-MM-DD date and returns the key of its week.
func KeyForDate(s string) (Key, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return KeyOf(t), nil
}

// Valid reports whether k is a well-formed Monday key.
func (k Key) Valid() bool {
	_, err := ParseKey(string(k))
	return err == nil
}

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// Time returns the UTC midnight of the key's Monday.
// The zero time is returned for malformed keys.
func (k Key) Time() time.Time {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

// End returns the Sunday that closes the week (key + 6 days).
func (k Key) End() Key {
	return Key(k.Time().AddDate(0, 0, 6).Format(Layout))
}

// AddWeeks returns the key n weeks after k (n may be negative).
func (k Key) AddWeeks(n int) Key {
	return Key(k.Time().AddDate(0, 0, 7*n).Format(Layout))
}

// WeeksSince returns the whole number of weeks from ref to k, rounded to
// the nearest week. It is negative when k is before ref.
func (k Key) WeeksSince(ref Key) int {
	days := k.Time().Sub(ref.Time()).Hours() / 24
	return int(math.Round(days / 7))
}

// Date returns the calendar date of weekday d within the week.
func (k Key) Date(d Weekday) time.Time {
	return k.Time().AddDate(0, 0, d.Index())
}

// Contains reports whether t falls within the week.
func (k Key) Contains(t time.Time) bool {
	return KeyOf(t) == k
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysSinceMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
