package schedule

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no snapshot exists for a planning date via any
// read path.
var ErrNotFound = errors.New("schedule not found")

// ValidationError reports a missing or malformed request field. It is the
// only error surfaced verbatim to clients.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
