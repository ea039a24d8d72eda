package attendance

import "time"

// DayStatus is the derived classification of a user's day.
type DayStatus string

const (
	StatusOnTime           DayStatus = "ON_TIME"
	StatusLate             DayStatus = "LATE"
	StatusEarlyLeave       DayStatus = "EARLY_LEAVE"
	StatusLateAndEarly     DayStatus = "LATE_AND_EARLY"
	StatusWorking          DayStatus = "WORKING"
	StatusMissingCheckout  DayStatus = "MISSING_CHECKOUT"
	StatusAbsent           DayStatus = "ABSENT"
	StatusWeekendOrHoliday DayStatus = "WEEKEND_OR_HOLIDAY"
)

// Attendance is a single work session keyed on the nominal date, the
// business-timezone date of the check-in. Cross-midnight sessions keep
// the check-in's date and simply carry a later check-out timestamp.
type Attendance struct {
	ID         string
	UserID     string
	Date       string // YYYY-MM-DD
	CheckInAt  time.Time
	CheckOutAt *time.Time
	OTApproved bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO / Join
	UserName     string
	EmployeeCode string
	TeamID       *string
}

// IsOpen reports whether the session has no check-out yet.
func (a *Attendance) IsOpen() bool {
	return a.CheckOutAt == nil
}

// IsStale reports whether an open session has outlived the grace window.
func (a *Attendance) IsStale(now time.Time, grace time.Duration) bool {
	return a.IsOpen() && now.Sub(a.CheckInAt) > grace
}
