package routine

import (
	"time"

	"github.com/google/uuid"
)

// timeNow is a package-level variable for testability.
// Tests can replace this to control timestamps in assertions.
var timeNow = time.Now

// newID generates task and prep-task ids. Tests replace it to get
// predictable ids.
var newID = uuid.NewString

// timestamp formats the current time the way routines store it.
func timestamp() string {
	return timeNow().UTC().Format(time.RFC3339Nano)
}
