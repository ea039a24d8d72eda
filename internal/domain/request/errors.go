package request

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound    = errors.New("request not found")
	ErrRequestNotPending  = errors.New("request is no longer pending")
	ErrDuplicatePending   = errors.New("a pending request of this type already exists for this date")
	ErrMissingAnchor      = errors.New("no check-in record found for the requested date")
	ErrCheckoutNotAfter   = errors.New("requested check-out must be after the check-in time")
	ErrAdjustedTimesOrder = errors.New("adjusted times would leave check-out before check-in")
)

// SessionTooLongError rejects an adjust-time whose resulting session
// would exceed the grace window.
type SessionTooLongError struct {
	MaxHours int
}

func (e *SessionTooLongError) Error() string {
	return fmt.Sprintf("session exceeds %d hours", e.MaxHours)
}

// SubmitWindowError rejects an adjust-time created or approved too long
// after the anchoring check-in.
type SubmitWindowError struct {
	MaxDays int
}

func (e *SubmitWindowError) Error() string {
	return fmt.Sprintf("submitted more than %d days after check-in", e.MaxDays)
}

// LeaveOverlapError rejects a leave whose range overlaps another
// approved or pending leave for the same user.
type LeaveOverlapError struct {
	OtherStatus Status
	Start       string
	End         string
}

func (e *LeaveOverlapError) Error() string {
	return fmt.Sprintf("leave overlaps %s leave (%s to %s)", statusWord(e.OtherStatus), e.Start, e.End)
}

func statusWord(s Status) string {
	switch s {
	case StatusApproved:
		return "an approved"
	case StatusPending:
		return "a pending"
	}
	return "a " + string(s)
}

// AttendanceConflictError rejects a leave covering a date that already
// has an attendance record.
type AttendanceConflictError struct {
	Date string
}

func (e *AttendanceConflictError) Error() string {
	return fmt.Sprintf("attendance already recorded on %s", e.Date)
}
