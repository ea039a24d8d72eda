package request

import "time"

type Type string

const (
	TypeAdjustTime Type = "ADJUST_TIME"
	TypeLeave      Type = "LEAVE"
	TypeOvertime   Type = "OT_REQUEST"
)

func IsValidType(t string) bool {
	switch Type(t) {
	case TypeAdjustTime, TypeLeave, TypeOvertime:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type LeaveType string

const (
	LeaveAnnual LeaveType = "ANNUAL"
	LeaveSick   LeaveType = "SICK"
	LeaveUnpaid LeaveType = "UNPAID"
)

func IsValidLeaveType(t string) bool {
	switch LeaveType(t) {
	case LeaveAnnual, LeaveSick, LeaveUnpaid:
		return true
	}
	return false
}

// Request is a tagged variant over the three request kinds. Fields
// foreign to the tag are nil; ClearForeignFields enforces that before
// every save.
type Request struct {
	ID     string
	UserID string
	Type   Type
	Status Status

	// ADJUST_TIME / OT_REQUEST
	Date *string // nominal date, YYYY-MM-DD

	// ADJUST_TIME
	CheckInDate         *string // set only for a cross-midnight pair
	CheckOutDate        *string
	RequestedCheckInAt  *time.Time
	RequestedCheckOutAt *time.Time

	// LEAVE
	LeaveStartDate *string
	LeaveEndDate   *string
	LeaveType      *string
	LeaveDaysCount *int

	// OT_REQUEST
	EstimatedEndAt  *time.Time
	ActualOTMinutes *int

	Reason     string
	ApprovedBy *string
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO / Join
	SubmitterName   string
	SubmitterTeamID *string
}

// ClearForeignFields nils out every field that does not belong to the
// request's type tag.
func (r *Request) ClearForeignFields() {
	if r.Type != TypeAdjustTime {
		r.CheckInDate = nil
		r.CheckOutDate = nil
		r.RequestedCheckInAt = nil
		r.RequestedCheckOutAt = nil
	}
	if r.Type != TypeLeave {
		r.LeaveStartDate = nil
		r.LeaveEndDate = nil
		r.LeaveType = nil
		r.LeaveDaysCount = nil
	}
	if r.Type != TypeOvertime {
		r.EstimatedEndAt = nil
		r.ActualOTMinutes = nil
	}
	if r.Type == TypeLeave {
		r.Date = nil
	}
}
