package routine

import (
	"fmt"
	"testing"
	"time"
)

// fixedClock pins timeNow for the duration of a test and returns a func
// that advances it.
func fixedClock(t *testing.T, start time.Time) func(time.Duration) {
	t.Helper()
	orig := timeNow
	now := start
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
	return func(d time.Duration) { now = now.Add(d) }
}

// sequentialIDs makes newID return id-1, id-2, ... for the test.
func sequentialIDs(t *testing.T) {
	t.Helper()
	orig := newID
	n := 0
	newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	t.Cleanup(func() { newID = orig })
}

func boolPtr(b bool) *bool { return &b }
