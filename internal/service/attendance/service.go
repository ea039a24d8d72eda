package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/audit"
	"github.com/workpulse/attendance-backend-go/internal/domain/holiday"
	"github.com/workpulse/attendance-backend-go/internal/domain/request"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

type Scope string

const (
	ScopeSelf    Scope = "self"
	ScopeTeam    Scope = "team"
	ScopeCompany Scope = "company"
)

type Service struct {
	attendanceRepo attendance.AttendanceRepository
	requestRepo    request.RequestRepository
	holidayRepo    holiday.HolidayRepository
	auditRepo      audit.AuditRepository
	jwtService     jwt.Service
	clk            *clock.Clock
	deriver        *Deriver
	graceHours     int
}

func NewService(
	attendanceRepo attendance.AttendanceRepository,
	requestRepo request.RequestRepository,
	holidayRepo holiday.HolidayRepository,
	auditRepo audit.AuditRepository,
	jwtService jwt.Service,
	clk *clock.Clock,
	deriver *Deriver,
	graceHours int,
) *Service {
	return &Service{
		attendanceRepo: attendanceRepo,
		requestRepo:    requestRepo,
		holidayRepo:    holidayRepo,
		auditRepo:      auditRepo,
		jwtService:     jwtService,
		clk:            clk,
		deriver:        deriver,
		graceHours:     graceHours,
	}
}

func (s *Service) grace() time.Duration {
	return time.Duration(s.graceHours) * time.Hour
}

// CheckIn opens a session on today's nominal date. Any open session,
// active or stale, blocks a new one.
func (s *Service) CheckIn(ctx context.Context) (*attendance.AttendanceResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	open, err := s.attendanceRepo.ListOpenByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, attendance.ErrAlreadyCheckedIn
	}

	now := s.clk.Now()
	att := &attendance.Attendance{
		UserID:    principal.UserID,
		Date:      s.clk.DateKey(now),
		CheckInAt: now,
	}
	if err := s.attendanceRepo.Create(ctx, att); err != nil {
		return nil, err
	}

	resp := attendance.ToResponse(*att)
	return &resp, nil
}

// CheckOut closes the caller's most recent active session. A stale open
// session blocks the operation entirely and is surfaced by date so an
// administrator can resolve it; silently closing the newest would leave
// the stale record open and block the next check-in anyway.
func (s *Service) CheckOut(ctx context.Context) (*attendance.AttendanceResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.attendanceRepo.ListOpenByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, attendance.ErrNotCheckedIn
	}

	now := s.clk.Now()

	if len(sessions) > 1 {
		s.recordMultipleSessions(ctx, principal.UserID, sessions)
	}

	var stale *attendance.Attendance
	for i := range sessions {
		if sessions[i].IsStale(now, s.grace()) {
			// Oldest stale date; the list is newest-first.
			stale = &sessions[i]
		}
	}
	if stale != nil {
		s.recordAudit(ctx, principal.UserID, audit.KindStaleOpenSession, map[string]any{
			"session_id": stale.ID,
			"date":       stale.Date,
		})
		return nil, &attendance.StaleSessionError{Date: stale.Date}
	}

	closed, err := s.attendanceRepo.Close(ctx, sessions[0].ID, now)
	if err != nil {
		if errors.Is(err, attendance.ErrSessionClosed) {
			return nil, attendance.ErrNotCheckedIn
		}
		return nil, err
	}

	s.settleOvertime(ctx, closed)

	resp := attendance.ToResponse(*closed)
	return &resp, nil
}

// settleOvertime writes the actual overtime minutes back onto an
// approved overtime request for the session's date, if one exists.
func (s *Service) settleOvertime(ctx context.Context, att *attendance.Attendance) {
	ot, err := s.requestRepo.FindApprovedOvertime(ctx, att.UserID, att.Date)
	if err != nil {
		slog.Error("overtime lookup failed", "user_id", att.UserID, "date", att.Date, "error", err)
		return
	}
	if ot == nil {
		return
	}

	minutes := s.deriver.OvertimeMinutes(att)
	if err := s.requestRepo.SetActualOvertimeMinutes(ctx, ot.ID, minutes); err != nil {
		slog.Error("overtime write-back failed", "request_id", ot.ID, "error", err)
		return
	}
	if err := s.attendanceRepo.SetOvertimeApproved(ctx, att.ID, true); err != nil {
		slog.Error("overtime flag update failed", "attendance_id", att.ID, "error", err)
	}
	att.OTApproved = true
}

func (s *Service) recordMultipleSessions(ctx context.Context, userID string, sessions []attendance.Attendance) {
	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		if len(ids) == audit.MaxSessionIDs {
			break
		}
		ids = append(ids, sess.ID)
	}
	s.recordAudit(ctx, userID, audit.KindMultipleActiveSessions, map[string]any{
		"session_ids": ids,
		"count":       len(sessions),
	})
}

func (s *Service) recordAudit(ctx context.Context, userID string, kind audit.Kind, detail map[string]any) {
	entry := &audit.Entry{UserID: userID, Kind: kind, Detail: detail}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		slog.Error("audit entry not recorded", "kind", kind, "user_id", userID, "error", err)
	}
}

// Today returns the day view for the requested scope.
func (s *Service) Today(ctx context.Context, scope Scope, teamID *string) (*attendance.TodayResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	today := s.clk.DateKey(now)

	switch scope {
	case "", ScopeSelf:
		return s.todaySelf(ctx, principal, today, now)
	case ScopeTeam:
		return s.todayTeam(ctx, principal, teamID, today, now)
	case ScopeCompany:
		if !principal.CanViewCompanyScope() {
			return nil, user.ErrAccessDenied
		}
		return s.todayScoped(ctx, nil, today, now)
	}
	return nil, validator.ValidationErrors{{Field: "scope", Message: "scope must be one of: self, team, company"}}
}

func (s *Service) todaySelf(ctx context.Context, principal user.Principal, today string, now time.Time) (*attendance.TodayResponse, error) {
	att, err := s.attendanceRepo.GetByUserAndDate(ctx, principal.UserID, today)
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return nil, err
	}

	offDay, err := s.isWeekendOrHoliday(ctx, today)
	if err != nil {
		return nil, err
	}

	item := attendance.TodayItem{
		UserID: principal.UserID,
		TeamID: principal.TeamID,
		Status: s.deriver.DayStatus(att, today, offDay, now),
	}
	if att != nil {
		r := attendance.ToResponse(*att)
		item.Attendance = &r
	}
	return &attendance.TodayResponse{Date: today, Items: []attendance.TodayItem{item}}, nil
}

func (s *Service) todayTeam(ctx context.Context, principal user.Principal, teamID *string, today string, now time.Time) (*attendance.TodayResponse, error) {
	target := teamID
	if target == nil {
		target = principal.TeamID
	}
	if target == nil {
		return nil, validator.ValidationErrors{{Field: "team_id", Message: "team_id is required for team scope"}}
	}
	if !principal.CanViewTeamScope(*target) {
		return nil, user.ErrAccessDenied
	}
	return s.todayScoped(ctx, target, today, now)
}

func (s *Service) todayScoped(ctx context.Context, teamID *string, today string, now time.Time) (*attendance.TodayResponse, error) {
	sessions, err := s.attendanceRepo.ListByDate(ctx, today, teamID)
	if err != nil {
		return nil, err
	}

	offDay, err := s.isWeekendOrHoliday(ctx, today)
	if err != nil {
		return nil, err
	}

	items := make([]attendance.TodayItem, 0, len(sessions))
	for i := range sessions {
		att := sessions[i]
		r := attendance.ToResponse(att)
		items = append(items, attendance.TodayItem{
			UserID:       att.UserID,
			Name:         att.UserName,
			EmployeeCode: att.EmployeeCode,
			TeamID:       att.TeamID,
			Status:       s.deriver.DayStatus(&att, today, offDay, now),
			Attendance:   &r,
		})
	}
	return &attendance.TodayResponse{Date: today, Items: items}, nil
}

func (s *Service) isWeekendOrHoliday(ctx context.Context, dateKey string) (bool, error) {
	weekend, err := s.clk.IsWeekend(dateKey)
	if err != nil {
		return false, err
	}
	if weekend {
		return true, nil
	}
	holidays, err := s.holidayRepo.DatesBetween(ctx, dateKey, dateKey)
	if err != nil {
		return false, err
	}
	_, ok := holidays[dateKey]
	return ok, nil
}

// MonthlyMe returns the caller's derived day records for a month.
func (s *Service) MonthlyMe(ctx context.Context, month string) (*attendance.MonthlyResponse, error) {
	principal, err := s.jwtService.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	first, ok := validator.IsValidMonth(month)
	if !ok {
		return nil, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}

	from := month + "-01"
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, s.clk.Location())
	to := lastDay.Format(clock.DateLayout)

	sessions, err := s.attendanceRepo.ListByUserBetween(ctx, principal.UserID, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*attendance.Attendance, len(sessions))
	for i := range sessions {
		byDate[sessions[i].Date] = &sessions[i]
	}

	holidays, err := s.holidayRepo.DatesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	items := make([]attendance.DayRecord, 0, lastDay.Day())
	for day := 1; day <= lastDay.Day(); day++ {
		dateKey := fmt.Sprintf("%s-%02d", month, day)
		att := byDate[dateKey]

		weekend, err := s.clk.IsWeekend(dateKey)
		if err != nil {
			return nil, err
		}
		_, isHoliday := holidays[dateKey]

		record := attendance.DayRecord{
			Date:            dateKey,
			Status:          s.deriver.DayStatus(att, dateKey, weekend || isHoliday, now),
			OvertimeMinutes: s.deriver.OvertimeMinutes(att),
		}
		if att != nil {
			r := attendance.ToResponse(*att)
			record.Attendance = &r
		}
		items = append(items, record)
	}

	return &attendance.MonthlyResponse{Month: month, Items: items}, nil
}
