package request

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/attendance-backend-go/internal/domain/request"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
)

var testReqDB *database.DB

const testSecret = "test-secret-key-for-jwt"

func reqTestInit(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testReqDB == nil {
		var err error
		testReqDB, err = database.NewPostgreSQLDB(dsn)
		require.NoError(t, err)
	}
	return testReqDB
}

func truncateReqTables(t *testing.T, ctx context.Context) {
	tables := []string{"audit_logs", "requests", "attendances", "holidays", "users", "teams"}
	for _, table := range tables {
		_, err := testReqDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
}

func newReqService(db *database.DB) (*Service, jwt.Service, *clock.Clock) {
	clk := clock.New(7)
	jwtSvc := jwt.NewJWTService(testSecret, "1h")
	svc := NewService(
		db,
		postgresql.NewRequestRepository(db),
		postgresql.NewAttendanceRepository(db),
		postgresql.NewHolidayRepository(db),
		jwtSvc,
		clk,
		24,
		7,
		"17:31",
		30,
	)
	return svc, jwtSvc, clk
}

func reqAuthedCtx(t *testing.T, jwtSvc jwt.Service, userID string, role user.Role, teamID *string) context.Context {
	t.Helper()
	tokenStr, _, err := jwtSvc.GenerateAccessToken(userID, role, teamID)
	require.NoError(t, err)
	token, err := jwtSvc.JWTAuth().Decode(tokenStr)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func createReqTestTeam(t *testing.T, ctx context.Context, name string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := testReqDB.Exec(ctx, `INSERT INTO teams (id, name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
	return id
}

func createReqTestUser(t *testing.T, ctx context.Context, role user.Role, teamID *string) string {
	t.Helper()
	id := uuid.New().String()
	code := fmt.Sprintf("EMP-%d", time.Now().UnixNano())
	_, err := testReqDB.Exec(ctx, `
		INSERT INTO users (id, employee_code, name, email, password_hash, role, team_id)
		VALUES ($1, $2, 'Test User', $3, 'x', $4, $5)
	`, id, code, code+"@example.com", string(role), teamID)
	require.NoError(t, err)
	return id
}

func insertApprovedLeave(t *testing.T, ctx context.Context, userID, start, end string) {
	t.Helper()
	_, err := testReqDB.Exec(ctx, `
		INSERT INTO requests (id, user_id, type, status, leave_start_date, leave_end_date, reason)
		VALUES ($1, $2, 'LEAVE', 'APPROVED', $3, $4, 'booked')
	`, uuid.New().String(), userID, start, end)
	require.NoError(t, err)
}

func mustAddDays(t *testing.T, clk *clock.Clock, date string, n int) string {
	t.Helper()
	out, err := clk.AddDays(date, n)
	require.NoError(t, err)
	return out
}

func TestCreateLeaveOverlap(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	userID := createReqTestUser(t, ctx, user.RoleEmployee, nil)
	authCtx := reqAuthedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	today := clk.DateKey(clk.Now())
	start := mustAddDays(t, clk, today, 10)
	end := mustAddDays(t, clk, today, 14)
	insertApprovedLeave(t, ctx, userID, start, end)

	// Sharing even a single date conflicts.
	req := &request.CreateRequestRequest{
		Type:           string(request.TypeLeave),
		Reason:         "family trip",
		LeaveStartDate: &end,
		LeaveEndDate:   strPtrSvc(mustAddDays(t, clk, end, 3)),
	}
	_, err := svc.Create(authCtx, req)
	var overlapErr *request.LeaveOverlapError
	require.ErrorAs(t, err, &overlapErr)
	assert.Equal(t, request.StatusApproved, overlapErr.OtherStatus)
	assert.Contains(t, overlapErr.Error(), "an approved")

	// Starting the day after the existing leave ends is allowed.
	adjacent := &request.CreateRequestRequest{
		Type:           string(request.TypeLeave),
		Reason:         "family trip",
		LeaveStartDate: strPtrSvc(mustAddDays(t, clk, end, 1)),
		LeaveEndDate:   strPtrSvc(mustAddDays(t, clk, end, 3)),
	}
	resp, err := svc.Create(authCtx, adjacent)
	require.NoError(t, err)
	assert.Equal(t, string(request.StatusPending), resp.Status)
	require.NotNil(t, resp.LeaveDaysCount)
}

func TestCreateLeaveAttendanceConflict(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	userID := createReqTestUser(t, ctx, user.RoleEmployee, nil)
	authCtx := reqAuthedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	now := clk.Now()
	yesterday := mustAddDays(t, clk, clk.DateKey(now), -1)
	checkIn := now.Add(-24 * time.Hour)
	checkOut := checkIn.Add(9 * time.Hour)
	_, err := db.Exec(ctx, `
		INSERT INTO attendances (id, user_id, date, check_in_at, check_out_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), userID, yesterday, checkIn, checkOut)
	require.NoError(t, err)

	req := &request.CreateRequestRequest{
		Type:           string(request.TypeLeave),
		Reason:         "backdated leave",
		LeaveStartDate: strPtrSvc(mustAddDays(t, clk, yesterday, -2)),
		LeaveEndDate:   &yesterday,
	}
	_, err = svc.Create(authCtx, req)
	var conflictErr *request.AttendanceConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, yesterday, conflictErr.Date)
}

func TestCreateOvertimeDuplicatePending(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	userID := createReqTestUser(t, ctx, user.RoleEmployee, nil)
	authCtx := reqAuthedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	today := clk.DateKey(clk.Now())
	end, err := clk.At(today, "21:00")
	require.NoError(t, err)
	endStr := end.Format(time.RFC3339)

	req := &request.CreateRequestRequest{
		Type:             string(request.TypeOvertime),
		Reason:           "release night",
		Date:             &today,
		EstimatedEndTime: &endStr,
	}
	_, err = svc.Create(authCtx, req)
	require.NoError(t, err)

	_, err = svc.Create(authCtx, req)
	assert.ErrorIs(t, err, request.ErrDuplicatePending)
}

func TestCreateOvertimeBelowThreshold(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	userID := createReqTestUser(t, ctx, user.RoleEmployee, nil)
	authCtx := reqAuthedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	today := clk.DateKey(clk.Now())
	end, err := clk.At(today, "17:45")
	require.NoError(t, err)
	endStr := end.Format(time.RFC3339)

	req := &request.CreateRequestRequest{
		Type:             string(request.TypeOvertime),
		Reason:           "short stay",
		Date:             &today,
		EstimatedEndTime: &endStr,
	}
	_, err = svc.Create(authCtx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "18:01")
}

func TestCreateAdjustTimeSubmitWindow(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	userID := createReqTestUser(t, ctx, user.RoleEmployee, nil)
	authCtx := reqAuthedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	today := clk.DateKey(clk.Now())
	stale := mustAddDays(t, clk, today, -10)
	in, err := clk.At(stale, "09:00")
	require.NoError(t, err)
	out, err := clk.At(stale, "18:00")
	require.NoError(t, err)
	inStr, outStr := in.Format(time.RFC3339), out.Format(time.RFC3339)

	req := &request.CreateRequestRequest{
		Type:                string(request.TypeAdjustTime),
		Reason:              "forgot badge",
		Date:                &stale,
		RequestedCheckInAt:  &inStr,
		RequestedCheckOutAt: &outStr,
	}
	_, err = svc.Create(authCtx, req)
	var windowErr *request.SubmitWindowError
	require.ErrorAs(t, err, &windowErr)
	assert.Equal(t, 7, windowErr.MaxDays)
}

func TestCreateAdjustTimeSessionTooLong(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	userID := createReqTestUser(t, ctx, user.RoleEmployee, nil)
	authCtx := reqAuthedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	// An open session from yesterday anchors the request; the proposed
	// checkout a day later makes the session 25 hours long.
	today := clk.DateKey(clk.Now())
	yesterday := mustAddDays(t, clk, today, -1)
	in, err := clk.At(yesterday, "08:00")
	require.NoError(t, err)
	_, err = db.Exec(ctx, `
		INSERT INTO attendances (id, user_id, date, check_in_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.New().String(), userID, yesterday, in)
	require.NoError(t, err)

	out, err := clk.At(today, "09:00")
	require.NoError(t, err)
	outStr := out.Format(time.RFC3339)

	req := &request.CreateRequestRequest{
		Type:                string(request.TypeAdjustTime),
		Reason:              "forgot to check out",
		Date:                &yesterday,
		CheckInDate:         &yesterday,
		CheckOutDate:        &today,
		RequestedCheckOutAt: &outStr,
	}
	_, err = svc.Create(authCtx, req)
	var tooLongErr *request.SessionTooLongError
	require.ErrorAs(t, err, &tooLongErr)
	assert.Equal(t, 24, tooLongErr.MaxHours)
}

func TestCreateAdjustTimeMissingAnchor(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	userID := createReqTestUser(t, ctx, user.RoleEmployee, nil)
	authCtx := reqAuthedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	yesterday := mustAddDays(t, clk, clk.DateKey(clk.Now()), -1)
	out, err := clk.At(yesterday, "18:00")
	require.NoError(t, err)
	outStr := out.Format(time.RFC3339)

	// Checkout-only with no recorded session to anchor against.
	req := &request.CreateRequestRequest{
		Type:                string(request.TypeAdjustTime),
		Reason:              "forgot to check out",
		Date:                &yesterday,
		RequestedCheckOutAt: &outStr,
	}
	_, err = svc.Create(authCtx, req)
	assert.ErrorIs(t, err, request.ErrMissingAnchor)
}

func TestApproveOnceOnly(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	teamID := createReqTestTeam(t, ctx, "Platform")
	otherTeamID := createReqTestTeam(t, ctx, "Sales")
	employeeID := createReqTestUser(t, ctx, user.RoleEmployee, &teamID)
	managerID := createReqTestUser(t, ctx, user.RoleManager, &teamID)
	outsiderID := createReqTestUser(t, ctx, user.RoleManager, &otherTeamID)

	employeeCtx := reqAuthedCtx(t, jwtSvc, employeeID, user.RoleEmployee, &teamID)
	managerCtx := reqAuthedCtx(t, jwtSvc, managerID, user.RoleManager, &teamID)
	outsiderCtx := reqAuthedCtx(t, jwtSvc, outsiderID, user.RoleManager, &otherTeamID)

	today := clk.DateKey(clk.Now())
	start := mustAddDays(t, clk, today, 5)
	end := mustAddDays(t, clk, today, 6)
	created, err := svc.Create(employeeCtx, &request.CreateRequestRequest{
		Type:           string(request.TypeLeave),
		Reason:         "rest",
		LeaveStartDate: &start,
		LeaveEndDate:   &end,
	})
	require.NoError(t, err)

	// A manager from another team never sees the request.
	_, err = svc.Approve(outsiderCtx, created.ID)
	assert.ErrorIs(t, err, user.ErrAccessDenied)

	// Submitters cannot decide their own requests.
	_, err = svc.Approve(employeeCtx, created.ID)
	assert.ErrorIs(t, err, user.ErrAccessDenied)

	approved, err := svc.Approve(managerCtx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(request.StatusApproved), approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, managerID, *approved.ApprovedBy)

	// The PENDING compare-and-set admits exactly one decision.
	_, err = svc.Approve(managerCtx, created.ID)
	assert.ErrorIs(t, err, request.ErrRequestNotPending)
	_, err = svc.Reject(managerCtx, created.ID)
	assert.ErrorIs(t, err, request.ErrRequestNotPending)
}

func TestApproveAdjustTimeUpsertsAttendance(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	teamID := createReqTestTeam(t, ctx, "Platform")
	employeeID := createReqTestUser(t, ctx, user.RoleEmployee, &teamID)
	managerID := createReqTestUser(t, ctx, user.RoleManager, &teamID)

	employeeCtx := reqAuthedCtx(t, jwtSvc, employeeID, user.RoleEmployee, &teamID)
	managerCtx := reqAuthedCtx(t, jwtSvc, managerID, user.RoleManager, &teamID)

	yesterday := mustAddDays(t, clk, clk.DateKey(clk.Now()), -1)
	in, err := clk.At(yesterday, "09:00")
	require.NoError(t, err)
	out, err := clk.At(yesterday, "18:00")
	require.NoError(t, err)
	inStr, outStr := in.Format(time.RFC3339), out.Format(time.RFC3339)

	created, err := svc.Create(employeeCtx, &request.CreateRequestRequest{
		Type:                string(request.TypeAdjustTime),
		Reason:              "badge reader was down",
		Date:                &yesterday,
		RequestedCheckInAt:  &inStr,
		RequestedCheckOutAt: &outStr,
	})
	require.NoError(t, err)

	_, err = svc.Approve(managerCtx, created.ID)
	require.NoError(t, err)

	var checkIn, checkOut time.Time
	err = db.QueryRow(ctx, `
		SELECT check_in_at, check_out_at FROM attendances
		WHERE user_id = $1 AND date = $2
	`, employeeID, yesterday).Scan(&checkIn, &checkOut)
	require.NoError(t, err)
	assert.True(t, checkIn.Equal(in))
	assert.True(t, checkOut.Equal(out))
}

func TestListPendingScope(t *testing.T) {
	db := reqTestInit(t)
	ctx := context.Background()
	truncateReqTables(t, ctx)

	svc, jwtSvc, clk := newReqService(db)
	teamID := createReqTestTeam(t, ctx, "Platform")
	otherTeamID := createReqTestTeam(t, ctx, "Sales")
	insideID := createReqTestUser(t, ctx, user.RoleEmployee, &teamID)
	outsideID := createReqTestUser(t, ctx, user.RoleEmployee, &otherTeamID)
	managerID := createReqTestUser(t, ctx, user.RoleManager, &teamID)
	adminID := createReqTestUser(t, ctx, user.RoleAdmin, nil)

	today := clk.DateKey(clk.Now())
	for _, uid := range []string{insideID, outsideID} {
		uCtx := reqAuthedCtx(t, jwtSvc, uid, user.RoleEmployee, nil)
		start := mustAddDays(t, clk, today, 5)
		end := mustAddDays(t, clk, today, 6)
		_, err := svc.Create(uCtx, &request.CreateRequestRequest{
			Type:           string(request.TypeLeave),
			Reason:         "rest",
			LeaveStartDate: &start,
			LeaveEndDate:   &end,
		})
		require.NoError(t, err)
	}

	managerCtx := reqAuthedCtx(t, jwtSvc, managerID, user.RoleManager, &teamID)
	mine, err := svc.ListPending(managerCtx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, insideID, mine[0].UserID)

	adminCtx := reqAuthedCtx(t, jwtSvc, adminID, user.RoleAdmin, nil)
	all, err := svc.ListPending(adminCtx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	employeeCtx := reqAuthedCtx(t, jwtSvc, insideID, user.RoleEmployee, &teamID)
	_, err = svc.ListPending(employeeCtx)
	assert.ErrorIs(t, err, user.ErrAccessDenied)
}

func strPtrSvc(s string) *string { return &s }
