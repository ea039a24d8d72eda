package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/holiday"
	"github.com/workpulse/attendance-backend-go/internal/domain/request"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
)

type Service struct {
	db               *database.DB
	requestRepo      request.RequestRepository
	attendanceRepo   attendance.AttendanceRepository
	holidayRepo      holiday.HolidayRepository
	jwtService       jwt.Service
	clk              *clock.Clock
	graceHours       int
	submitWindowDays int
	overtimeStart    string // HH:MM
	minOTMinutes     int
}

func NewService(
	db *database.DB,
	requestRepo request.RequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	holidayRepo holiday.HolidayRepository,
	jwtService jwt.Service,
	clk *clock.Clock,
	graceHours int,
	submitWindowDays int,
	overtimeStart string,
	minOTMinutes int,
) *Service {
	return &Service{
		db:               db,
		requestRepo:      requestRepo,
		attendanceRepo:   attendanceRepo,
		holidayRepo:      holidayRepo,
		jwtService:       jwtService,
		clk:              clk,
		graceHours:       graceHours,
		submitWindowDays: submitWindowDays,
		overtimeStart:    overtimeStart,
		minOTMinutes:     minOTMinutes,
	}
}

func (s *Service) grace() time.Duration {
	return time.Duration(s.graceHours) * time.Hour
}

func (s *Service) submitWindow() time.Duration {
	return time.Duration(s.submitWindowDays) * 24 * time.Hour
}

// Create validates and stores a request of any of the three kinds.
func (s *Service) Create(ctx context.Context, req *request.CreateRequestRequest) (*request.RequestResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var entity *request.Request
	switch request.Type(req.Type) {
	case request.TypeAdjustTime:
		entity, err = s.buildAdjustTime(ctx, principal.UserID, req)
	case request.TypeLeave:
		entity, err = s.buildLeave(ctx, principal.UserID, req)
	case request.TypeOvertime:
		entity, err = s.buildOvertime(ctx, principal.UserID, req)
	}
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	resp := request.ToResponse(*entity)
	return &resp, nil
}

func (s *Service) buildAdjustTime(ctx context.Context, userID string, req *request.CreateRequestRequest) (*request.Request, error) {
	date := *req.Date

	var requestedIn, requestedOut *time.Time
	if req.RequestedCheckInAt != nil {
		t, _ := validator.IsValidDateTime(*req.RequestedCheckInAt)
		t = s.clk.In(t)
		if s.clk.DateKey(t) != date {
			return nil, validator.ValidationErrors{{Field: "requested_check_in_at", Message: "must fall on the nominal date in business time"}}
		}
		requestedIn = &t
	}
	if req.RequestedCheckOutAt != nil {
		t, _ := validator.IsValidDateTime(*req.RequestedCheckOutAt)
		t = s.clk.In(t)
		// A cross-midnight pair moves the expected check-out date one
		// day forward; otherwise it stays on the nominal date.
		expected := date
		if req.CheckOutDate != nil {
			expected = *req.CheckOutDate
		}
		if s.clk.DateKey(t) != expected {
			return nil, validator.ValidationErrors{{Field: "requested_check_out_at", Message: "must fall on the stated check-out date in business time"}}
		}
		requestedOut = &t
	}

	anchor, err := s.resolveAnchor(ctx, userID, date, requestedIn)
	if err != nil {
		return nil, err
	}
	if requestedOut != nil {
		if !requestedOut.After(anchor) {
			return nil, request.ErrCheckoutNotAfter
		}
		if requestedOut.Sub(anchor) > s.grace() {
			return nil, &request.SessionTooLongError{MaxHours: s.graceHours}
		}
	}
	if s.clk.Now().Sub(anchor) > s.submitWindow() {
		return nil, &request.SubmitWindowError{MaxDays: s.submitWindowDays}
	}

	pending, err := s.requestRepo.HasPending(ctx, userID, date, request.TypeAdjustTime)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, request.ErrDuplicatePending
	}

	return &request.Request{
		UserID:              userID,
		Type:                request.TypeAdjustTime,
		Status:              request.StatusPending,
		Date:                &date,
		CheckInDate:         req.CheckInDate,
		CheckOutDate:        req.CheckOutDate,
		RequestedCheckInAt:  requestedIn,
		RequestedCheckOutAt: requestedOut,
		Reason:              req.Reason,
	}, nil
}

// resolveAnchor returns the check-in the adjust-time rules measure
// against: the requested one when present, else the recorded one.
func (s *Service) resolveAnchor(ctx context.Context, userID, date string, requestedIn *time.Time) (time.Time, error) {
	if requestedIn != nil {
		return *requestedIn, nil
	}
	att, err := s.attendanceRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return time.Time{}, request.ErrMissingAnchor
		}
		return time.Time{}, err
	}
	return att.CheckInAt, nil
}

func (s *Service) buildLeave(ctx context.Context, userID string, req *request.CreateRequestRequest) (*request.Request, error) {
	start, end := *req.LeaveStartDate, *req.LeaveEndDate

	if conflictDate, err := s.attendanceRepo.FirstDateInRange(ctx, userID, start, end); err != nil {
		return nil, err
	} else if conflictDate != "" {
		return nil, &request.AttendanceConflictError{Date: conflictDate}
	}

	overlap, err := s.requestRepo.FindLeaveOverlap(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if overlap != nil {
		return nil, &request.LeaveOverlapError{
			OtherStatus: overlap.Status,
			Start:       *overlap.LeaveStartDate,
			End:         *overlap.LeaveEndDate,
		}
	}

	holidays, err := s.holidayRepo.DatesBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	days, err := s.clk.CountWorkdays(start, end, func(dateKey string) bool {
		_, ok := holidays[dateKey]
		return ok
	})
	if err != nil {
		return nil, err
	}

	return &request.Request{
		UserID:         userID,
		Type:           request.TypeLeave,
		Status:         request.StatusPending,
		LeaveStartDate: &start,
		LeaveEndDate:   &end,
		LeaveType:      req.LeaveType,
		LeaveDaysCount: &days,
		Reason:         req.Reason,
	}, nil
}

func (s *Service) buildOvertime(ctx context.Context, userID string, req *request.CreateRequestRequest) (*request.Request, error) {
	date := *req.Date

	end, _ := validator.IsValidDateTime(*req.EstimatedEndTime)
	end = s.clk.In(end)
	if s.clk.DateKey(end) != date {
		return nil, validator.ValidationErrors{{Field: "estimated_end_time", Message: "must fall on the nominal date in business time"}}
	}

	anchor, err := s.clk.At(date, s.overtimeStart)
	if err != nil {
		return nil, err
	}
	threshold := anchor.Add(time.Duration(s.minOTMinutes) * time.Minute)
	if end.Before(threshold) {
		return nil, validator.ValidationErrors{{
			Field:   "estimated_end_time",
			Message: fmt.Sprintf("must be at or after %s business time", threshold.Format("15:04")),
		}}
	}

	pending, err := s.requestRepo.HasPending(ctx, userID, date, request.TypeOvertime)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, request.ErrDuplicatePending
	}

	return &request.Request{
		UserID:         userID,
		Type:           request.TypeOvertime,
		Status:         request.StatusPending,
		Date:           &date,
		EstimatedEndAt: &end,
		Reason:         req.Reason,
	}, nil
}

// Approve transitions a pending request and applies its side effects.
// The PENDING compare-and-set decides concurrent approvers: exactly one
// wins, the other sees a conflict.
func (s *Service) Approve(ctx context.Context, id string) (*request.RequestResponse, error) {
	principal, req, err := s.loadForDecision(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	var updated *request.Request

	switch req.Type {
	case request.TypeAdjustTime:
		updated, err = s.approveAdjustTime(ctx, req, principal.UserID, now)
	case request.TypeOvertime:
		updated, err = s.requestRepo.SetStatus(ctx, id, request.StatusApproved, principal.UserID, now)
		if err == nil {
			s.settleOvertimeIfClosed(ctx, updated)
		}
	default:
		updated, err = s.requestRepo.SetStatus(ctx, id, request.StatusApproved, principal.UserID, now)
	}
	if err != nil {
		return nil, err
	}

	resp := request.ToResponse(*updated)
	return &resp, nil
}

// approveAdjustTime re-validates the anchor and submission window, then
// flips the status and upserts the attendance in one transaction.
func (s *Service) approveAdjustTime(ctx context.Context, req *request.Request, approverID string, now time.Time) (*request.Request, error) {
	var updated *request.Request

	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		existing, err := s.attendanceRepo.GetByUserAndDate(txCtx, req.UserID, *req.Date)
		if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return err
		}

		var anchor time.Time
		switch {
		case req.RequestedCheckInAt != nil:
			anchor = *req.RequestedCheckInAt
		case existing != nil:
			anchor = existing.CheckInAt
		default:
			return request.ErrMissingAnchor
		}
		if now.Sub(anchor) > s.submitWindow() {
			return &request.SubmitWindowError{MaxDays: s.submitWindowDays}
		}

		updated, err = s.requestRepo.SetStatus(txCtx, req.ID, request.StatusApproved, approverID, now)
		if err != nil {
			return err
		}

		newIn := anchor
		var newOut *time.Time
		if req.RequestedCheckOutAt != nil {
			newOut = req.RequestedCheckOutAt
		} else if existing != nil {
			newOut = existing.CheckOutAt
		}
		if newOut != nil && !newOut.After(newIn) {
			return request.ErrAdjustedTimesOrder
		}

		att := &attendance.Attendance{
			UserID:     req.UserID,
			Date:       *req.Date,
			CheckInAt:  newIn,
			CheckOutAt: newOut,
		}
		if existing != nil {
			att.ID = existing.ID
			att.OTApproved = existing.OTApproved
		}
		_, err = s.attendanceRepo.Upsert(txCtx, att)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// settleOvertimeIfClosed fills actual minutes immediately when the
// session already ended before the overtime request was approved.
func (s *Service) settleOvertimeIfClosed(ctx context.Context, req *request.Request) {
	att, err := s.attendanceRepo.GetByUserAndDate(ctx, req.UserID, *req.Date)
	if err != nil {
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			slog.Error("overtime settlement lookup failed", "request_id", req.ID, "error", err)
		}
		return
	}
	if att.CheckOutAt == nil {
		return
	}

	anchor, err := s.clk.At(att.Date, s.overtimeStart)
	if err != nil {
		return
	}
	minutes := int(att.CheckOutAt.Sub(anchor).Minutes())
	if minutes < s.minOTMinutes {
		minutes = 0
	}
	if err := s.requestRepo.SetActualOvertimeMinutes(ctx, req.ID, minutes); err != nil {
		slog.Error("overtime settlement failed", "request_id", req.ID, "error", err)
		return
	}
	if err := s.attendanceRepo.SetOvertimeApproved(ctx, att.ID, true); err != nil {
		slog.Error("overtime flag update failed", "attendance_id", att.ID, "error", err)
	}
	req.ActualOTMinutes = &minutes
}

// Reject transitions a pending request to REJECTED.
func (s *Service) Reject(ctx context.Context, id string) (*request.RequestResponse, error) {
	principal, _, err := s.loadForDecision(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.requestRepo.SetStatus(ctx, id, request.StatusRejected, principal.UserID, s.clk.Now())
	if err != nil {
		return nil, err
	}

	resp := request.ToResponse(*updated)
	return &resp, nil
}

// loadForDecision resolves the approver and the target request, and
// enforces the approval scope before anything else is revealed.
func (s *Service) loadForDecision(ctx context.Context, id string) (user.Principal, *request.Request, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, nil, err
	}
	if principal.Role == user.RoleEmployee {
		return user.Principal{}, nil, user.ErrAccessDenied
	}

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) && !principal.IsAdmin() {
			// Managers get the same denial for missing and foreign requests.
			return user.Principal{}, nil, user.ErrAccessDenied
		}
		return user.Principal{}, nil, err
	}
	if !principal.CanApprove(req.SubmitterTeamID) {
		return user.Principal{}, nil, user.ErrAccessDenied
	}
	return principal, req, nil
}

// ListMine returns the caller's requests, newest first.
func (s *Service) ListMine(ctx context.Context) ([]request.RequestResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.requestRepo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

// ListPending returns the pending queue scoped to the approver: a
// manager sees their own team, an admin sees everything.
func (s *Service) ListPending(ctx context.Context) ([]request.RequestResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var teamID *string
	switch {
	case principal.IsAdmin():
		teamID = nil
	case principal.Role == user.RoleManager && principal.HasTeam():
		teamID = principal.TeamID
	default:
		return nil, user.ErrAccessDenied
	}

	items, err := s.requestRepo.ListPending(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func toResponses(items []request.Request) []request.RequestResponse {
	out := make([]request.RequestResponse, 0, len(items))
	for _, item := range items {
		out = append(out, request.ToResponse(item))
	}
	return out
}
