package request

import (
	"time"

	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

const (
	maxReasonLength  = 1000
	maxLeaveSpanDays = 30
)

// CreateRequestRequest is the union payload for all three request
// kinds; Validate dispatches on Type and checks the shape of the
// variant's fields. Business-time rules (anchors, windows, overlaps)
// are enforced by the service.
type CreateRequestRequest struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`

	// ADJUST_TIME / OT_REQUEST
	Date *string `json:"date,omitempty"`

	// ADJUST_TIME
	CheckInDate         *string `json:"check_in_date,omitempty"`
	CheckOutDate        *string `json:"check_out_date,omitempty"`
	RequestedCheckInAt  *string `json:"requested_check_in_at,omitempty"`
	RequestedCheckOutAt *string `json:"requested_check_out_at,omitempty"`

	// LEAVE
	LeaveStartDate *string `json:"leave_start_date,omitempty"`
	LeaveEndDate   *string `json:"leave_end_date,omitempty"`
	LeaveType      *string `json:"leave_type,omitempty"`

	// OT_REQUEST
	EstimatedEndTime *string `json:"estimated_end_time,omitempty"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if !IsValidType(r.Type) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of: ADJUST_TIME, LEAVE, OT_REQUEST"})
		return errs
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}
	if len(r.Reason) > maxReasonLength {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must be at most 1000 characters"})
	}

	switch Type(r.Type) {
	case TypeAdjustTime:
		errs = append(errs, r.validateAdjustTime()...)
	case TypeLeave:
		errs = append(errs, r.validateLeave()...)
	case TypeOvertime:
		errs = append(errs, r.validateOvertime()...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateRequestRequest) validateAdjustTime() validator.ValidationErrors {
	var errs validator.ValidationErrors

	if r.Date == nil {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
	} else if _, ok := validator.IsValidDate(*r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}

	if r.RequestedCheckInAt == nil && r.RequestedCheckOutAt == nil {
		errs = append(errs, validator.ValidationError{Field: "requested_check_in_at", Message: "at least one of requested_check_in_at, requested_check_out_at is required"})
	}
	var in, out time.Time
	var hasIn, hasOut bool
	if r.RequestedCheckInAt != nil {
		if t, ok := validator.IsValidDateTime(*r.RequestedCheckInAt); ok {
			in, hasIn = t, true
		} else {
			errs = append(errs, validator.ValidationError{Field: "requested_check_in_at", Message: "must be a valid ISO-8601 timestamp"})
		}
	}
	if r.RequestedCheckOutAt != nil {
		if t, ok := validator.IsValidDateTime(*r.RequestedCheckOutAt); ok {
			out, hasOut = t, true
		} else {
			errs = append(errs, validator.ValidationError{Field: "requested_check_out_at", Message: "must be a valid ISO-8601 timestamp"})
		}
	}
	if hasIn && hasOut && !out.After(in) {
		errs = append(errs, validator.ValidationError{Field: "requested_check_out_at", Message: "must be after requested_check_in_at"})
	}

	// A cross-midnight pair is explicit: both boundary dates set and
	// check_out_date one day after check_in_date.
	if (r.CheckInDate == nil) != (r.CheckOutDate == nil) {
		errs = append(errs, validator.ValidationError{Field: "check_out_date", Message: "check_in_date and check_out_date must be provided together"})
	} else if r.CheckInDate != nil {
		inDate, inOK := validator.IsValidDate(*r.CheckInDate)
		outDate, outOK := validator.IsValidDate(*r.CheckOutDate)
		if !inOK {
			errs = append(errs, validator.ValidationError{Field: "check_in_date", Message: "must be in YYYY-MM-DD format"})
		}
		if !outOK {
			errs = append(errs, validator.ValidationError{Field: "check_out_date", Message: "must be in YYYY-MM-DD format"})
		}
		if inOK && outOK {
			if outDate.Before(inDate) {
				errs = append(errs, validator.ValidationError{Field: "check_out_date", Message: "must not be before check_in_date"})
			} else if outDate.Sub(inDate) > 24*time.Hour {
				errs = append(errs, validator.ValidationError{Field: "check_out_date", Message: "must be at most one day after check_in_date"})
			}
			if r.Date != nil && *r.CheckInDate != *r.Date {
				errs = append(errs, validator.ValidationError{Field: "check_in_date", Message: "must equal the nominal date"})
			}
		}
	}

	return errs
}

func (r *CreateRequestRequest) validateLeave() validator.ValidationErrors {
	var errs validator.ValidationErrors

	var start, end time.Time
	var startOK, endOK bool
	if r.LeaveStartDate == nil {
		errs = append(errs, validator.ValidationError{Field: "leave_start_date", Message: "leave_start_date is required"})
	} else if start, startOK = validator.IsValidDate(*r.LeaveStartDate); !startOK {
		errs = append(errs, validator.ValidationError{Field: "leave_start_date", Message: "must be in YYYY-MM-DD format"})
	}
	if r.LeaveEndDate == nil {
		errs = append(errs, validator.ValidationError{Field: "leave_end_date", Message: "leave_end_date is required"})
	} else if end, endOK = validator.IsValidDate(*r.LeaveEndDate); !endOK {
		errs = append(errs, validator.ValidationError{Field: "leave_end_date", Message: "must be in YYYY-MM-DD format"})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "leave_end_date", Message: "must not be before leave_start_date"})
		} else if int(end.Sub(start).Hours()/24)+1 > maxLeaveSpanDays {
			errs = append(errs, validator.ValidationError{Field: "leave_end_date", Message: "leave span must be at most 30 days"})
		}
	}
	if r.LeaveType != nil && !IsValidLeaveType(*r.LeaveType) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type must be one of: ANNUAL, SICK, UNPAID"})
	}

	return errs
}

func (r *CreateRequestRequest) validateOvertime() validator.ValidationErrors {
	var errs validator.ValidationErrors

	if r.Date == nil {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
	} else if _, ok := validator.IsValidDate(*r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}
	if r.EstimatedEndTime == nil {
		errs = append(errs, validator.ValidationError{Field: "estimated_end_time", Message: "estimated_end_time is required"})
	} else if _, ok := validator.IsValidDateTime(*r.EstimatedEndTime); !ok {
		errs = append(errs, validator.ValidationError{Field: "estimated_end_time", Message: "must be a valid ISO-8601 timestamp"})
	}

	return errs
}

type RequestResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	Status string `json:"status"`

	Date                *string `json:"date,omitempty"`
	CheckInDate         *string `json:"check_in_date,omitempty"`
	CheckOutDate        *string `json:"check_out_date,omitempty"`
	RequestedCheckInAt  *string `json:"requested_check_in_at,omitempty"`
	RequestedCheckOutAt *string `json:"requested_check_out_at,omitempty"`

	LeaveStartDate *string `json:"leave_start_date,omitempty"`
	LeaveEndDate   *string `json:"leave_end_date,omitempty"`
	LeaveType      *string `json:"leave_type,omitempty"`
	LeaveDaysCount *int    `json:"leave_days_count,omitempty"`

	EstimatedEndTime *string `json:"estimated_end_time,omitempty"`
	ActualOTMinutes  *int    `json:"actual_ot_minutes,omitempty"`

	Reason     string  `json:"reason"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	CreatedAt  string  `json:"created_at"`

	SubmitterName   string  `json:"submitter_name,omitempty"`
	SubmitterTeamID *string `json:"submitter_team_id,omitempty"`
}

func ToResponse(req Request) RequestResponse {
	resp := RequestResponse{
		ID:              req.ID,
		UserID:          req.UserID,
		Type:            string(req.Type),
		Status:          string(req.Status),
		Date:            req.Date,
		CheckInDate:     req.CheckInDate,
		CheckOutDate:    req.CheckOutDate,
		LeaveStartDate:  req.LeaveStartDate,
		LeaveEndDate:    req.LeaveEndDate,
		LeaveType:       req.LeaveType,
		LeaveDaysCount:  req.LeaveDaysCount,
		ActualOTMinutes: req.ActualOTMinutes,
		Reason:          req.Reason,
		ApprovedBy:      req.ApprovedBy,
		CreatedAt:       req.CreatedAt.Format(time.RFC3339),
		SubmitterName:   req.SubmitterName,
		SubmitterTeamID: req.SubmitterTeamID,
	}
	resp.RequestedCheckInAt = formatTimePtr(req.RequestedCheckInAt)
	resp.RequestedCheckOutAt = formatTimePtr(req.RequestedCheckOutAt)
	resp.EstimatedEndTime = formatTimePtr(req.EstimatedEndAt)
	resp.ApprovedAt = formatTimePtr(req.ApprovedAt)
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
