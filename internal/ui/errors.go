package ui

import (
	"errors"
	"fmt"
)

// ErrStaleResponse marks a fetch result for a view that is no longer the
// one being asked for. It is logged and dropped, never shown.
var ErrStaleResponse = errors.New("stale response")

// WriteError is a failed create or update. The optimistic local change is
// kept as-is and the write is not retried.
type WriteError struct {
	Op     string
	TaskID int64
	Err    error
}

func (e *WriteError) Error() string {
	if e.TaskID == 0 {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s task %d failed: %v", e.Op, e.TaskID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
