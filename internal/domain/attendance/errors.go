package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyCheckedIn   = errors.New("an open session already exists; check out first")
	ErrNotCheckedIn       = errors.New("must check in first")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("attendance already recorded for this date")
	ErrSessionClosed      = errors.New("session already checked out")
)

// StaleSessionError blocks a check-out while an open session has
// exceeded the grace window. It names the stale date so an
// administrator can resolve the record.
type StaleSessionError struct {
	Date string
}

func (e *StaleSessionError) Error() string {
	return fmt.Sprintf("an unresolved open session from %s exceeds the grace window; contact an administrator", e.Date)
}
