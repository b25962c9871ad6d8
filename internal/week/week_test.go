package week

import (
	"testing"
	"time"
)

func TestKeyOf_AllDaysOfWeekShareKey(t *testing.T) {
	// 2024-11-04 is a Monday.
	for i := 0; i < 7; i++ {
		d := time.Date(2024, 11, 4+i, 15, 30, 0, 0, time.UTC)
		if got := KeyOf(d); got != "2024-11-04" {
			t.Errorf("KeyOf(%s) = %s, want 2024-11-04", d.Format(Layout), got)
		}
	}
}

func TestKeyOf_SundayBelongsToPreviousMonday(t *testing.T) {
	sunday := time.Date(2024, 11, 10, 23, 59, 0, 0, time.UTC)
	if got := KeyOf(sunday); got != "2024-11-04" {
		t.Errorf("KeyOf(sunday) = %s, want 2024-11-04", got)
	}
	nextMonday := time.Date(2024, 11, 11, 0, 0, 0, 0, time.UTC)
	if got := KeyOf(nextMonday); got != "2024-11-11" {
		t.Errorf("KeyOf(next monday) = %s, want 2024-11-11", got)
	}
}

func TestKeyOf_IdempotentOnKeys(t *testing.T) {
	start := time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		d := start.AddDate(0, 0, i)
		k := KeyOf(d)
		if again := KeyOf(k.Time()); again != k {
			t.Fatalf("KeyOf(KeyOf(%s)) = %s, want %s", d.Format(Layout), again, k)
		}
		if !k.Valid() {
			t.Fatalf("KeyOf(%s) = %s is not a valid Monday key", d.Format(Layout), k)
		}
	}
}

func TestKeyOf_UsesCallerCalendarDate(t *testing.T) {
	// Monday 00:30 in UTC+2 is still Sunday in UTC; the local date wins.
	loc := time.FixedZone("UTC+2", 2*60*60)
	d := time.Date(2024, 11, 11, 0, 30, 0, 0, loc)
	if got := KeyOf(d); got != "2024-11-11" {
		t.Errorf("KeyOf = %s, want 2024-11-11", got)
	}
}

func TestKeyOf_AcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// DST ended Sunday 2024-11-03.
	d := time.Date(2024, 11, 3, 12, 0, 0, 0, loc)
	if got := KeyOf(d); got != "2024-10-28" {
		t.Errorf("KeyOf = %s, want 2024-10-28", got)
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2024-11-04", false},
		{" 2024-11-04 ", false},
		{"2024-11-05", true},
		{"2024/11/04", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := ParseKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestKeyForDate_Normalizes(t *testing.T) {
	k, err := KeyForDate("2024-11-07")
	if err != nil {
		t.Fatalf("KeyForDate: %v", err)
	}
	if k != "2024-11-04" {
		t.Errorf("KeyForDate = %s, want 2024-11-04", k)
	}
}

func TestKey_Arithmetic(t *testing.T) {
	k := Key("2024-11-04")
	if got := k.End(); got != "2024-11-10" {
		t.Errorf("End = %s, want 2024-11-10", got)
	}
	if got := k.AddWeeks(-1); got != "2024-10-28" {
		t.Errorf("AddWeeks(-1) = %s, want 2024-10-28", got)
	}
	if got := k.AddWeeks(8).WeeksSince(k); got != 8 {
		t.Errorf("WeeksSince = %d, want 8", got)
	}
	if got := k.AddWeeks(-3).WeeksSince(k); got != -3 {
		t.Errorf("WeeksSince = %d, want -3", got)
	}
	if got := k.Date(Sunday).Format(Layout); got != "2024-11-10" {
		t.Errorf("Date(sunday) = %s, want 2024-11-10", got)
	}
}

func TestWeekday(t *testing.T) {
	if d, err := ParseWeekday("Friday"); err != nil || d != Friday {
		t.Errorf("ParseWeekday(Friday) = %q, %v", d, err)
	}
	if _, err := ParseWeekday("funday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
	if got := WeekdayOf(time.Date(2024, 11, 10, 8, 0, 0, 0, time.UTC)); got != Sunday {
		t.Errorf("WeekdayOf = %s, want sunday", got)
	}
	if Weekday("moonday").Valid() {
		t.Error("moonday should not be valid")
	}
}
