package week

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a lowercase English day name, the key of a routine's daily map.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the days in week order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts a day name in any case ("Monday", "monday").
func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid weekday %q: must be one of: monday, tuesday, wednesday, thursday, friday, saturday, sunday", s)
	}
	return d, nil
}

// WeekdayOf returns the weekday of t's calendar date.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[daysSinceMonday(dateOnly(t))]
}

// Valid reports whether d is one of the seven day names.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// Index returns the day's offset from Monday (0..6), or -1 if unknown.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}
