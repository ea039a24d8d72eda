package attendance

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

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
)

var testAttDB *database.DB

const testSecret = "test-secret-key-for-jwt"

func attTestInit(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testAttDB == nil {
		var err error
		testAttDB, err = database.NewPostgreSQLDB(dsn)
		require.NoError(t, err)
	}
	return testAttDB
}

func truncateAttTables(t *testing.T, ctx context.Context) {
	tables := []string{"audit_logs", "requests", "attendances", "holidays", "users", "teams"}
	for _, table := range tables {
		_, err := testAttDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
}

func newAttService(db *database.DB) (*Service, jwt.Service, *clock.Clock) {
	clk := clock.New(7)
	jwtSvc := jwt.NewJWTService(testSecret, "1h")
	deriver := NewDeriver(clk, "08:30", "17:30", "17:31", 30)
	svc := NewService(
		postgresql.NewAttendanceRepository(db),
		postgresql.NewRequestRepository(db),
		postgresql.NewHolidayRepository(db),
		postgresql.NewAuditRepository(db),
		jwtSvc,
		clk,
		deriver,
		24,
	)
	return svc, jwtSvc, clk
}

func authedCtx(t *testing.T, jwtSvc jwt.Service, userID string, role user.Role, teamID *string) context.Context {
	t.Helper()
	tokenStr, _, err := jwtSvc.GenerateAccessToken(userID, role, teamID)
	require.NoError(t, err)
	token, err := jwtSvc.JWTAuth().Decode(tokenStr)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func createAttTestUser(t *testing.T, ctx context.Context) string {
	t.Helper()
	id := uuid.New().String()
	code := fmt.Sprintf("EMP-%d", time.Now().UnixNano())
	_, err := testAttDB.Exec(ctx, `
		INSERT INTO users (id, employee_code, name, email, password_hash, role)
		VALUES ($1, $2, 'Test Employee', $3, 'x', 'EMPLOYEE')
	`, id, code, code+"@example.com")
	require.NoError(t, err)
	return id
}

func insertSession(t *testing.T, ctx context.Context, clk *clock.Clock, userID string, checkIn time.Time, checkOut *time.Time) string {
	t.Helper()
	id := uuid.New().String()
	_, err := testAttDB.Exec(ctx, `
		INSERT INTO attendances (id, user_id, date, check_in_at, check_out_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, clk.DateKey(checkIn), checkIn, checkOut)
	require.NoError(t, err)
	return id
}

func TestCheckInCheckOutLifecycle(t *testing.T) {
	db := attTestInit(t)
	ctx := context.Background()
	truncateAttTables(t, ctx)

	svc, jwtSvc, clk := newAttService(db)
	userID := createAttTestUser(t, ctx)
	authCtx := authedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	// Check-out before any check-in fails.
	_, err := svc.CheckOut(authCtx)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	resp, err := svc.CheckIn(authCtx)
	require.NoError(t, err)
	assert.Equal(t, clk.DateKey(clk.Now()), resp.Date)
	assert.Nil(t, resp.CheckOutAt)

	// A second check-in on an open session is refused.
	_, err = svc.CheckIn(authCtx)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	closed, err := svc.CheckOut(authCtx)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOutAt)

	// Nothing left open.
	_, err = svc.CheckOut(authCtx)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestStaleOpenSessionBlocksCheckout(t *testing.T) {
	db := attTestInit(t)
	ctx := context.Background()
	truncateAttTables(t, ctx)

	svc, jwtSvc, clk := newAttService(db)
	userID := createAttTestUser(t, ctx)
	authCtx := authedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	now := clk.Now()
	staleDate := clk.DateKey(now.Add(-50 * time.Hour))
	insertSession(t, ctx, clk, userID, now.Add(-50*time.Hour), nil)
	insertSession(t, ctx, clk, userID, now.Add(-8*time.Hour), nil)

	_, err := svc.CheckOut(authCtx)
	var staleErr *attendance.StaleSessionError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, staleDate, staleErr.Date)
	assert.Contains(t, staleErr.Error(), staleDate)

	// Both sessions stay open.
	var open int
	err = db.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendances WHERE user_id = $1 AND check_out_at IS NULL
	`, userID).Scan(&open)
	require.NoError(t, err)
	assert.Equal(t, 2, open)

	// Both audit kinds were recorded.
	var kinds []string
	rows, err := db.Query(ctx, `SELECT kind FROM audit_logs WHERE user_id = $1`, userID)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		kinds = append(kinds, k)
	}
	assert.Contains(t, kinds, "STALE_OPEN_SESSION")
	assert.Contains(t, kinds, "MULTIPLE_ACTIVE_SESSIONS")
}

func TestCheckoutClosesMostRecentActive(t *testing.T) {
	db := attTestInit(t)
	ctx := context.Background()
	truncateAttTables(t, ctx)

	svc, jwtSvc, clk := newAttService(db)
	userID := createAttTestUser(t, ctx)
	authCtx := authedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	// An active session from late yesterday and one from right now;
	// distinct nominal dates, both inside the grace window.
	now := clk.Now()
	yesterday, err := clk.AddDays(clk.DateKey(now), -1)
	require.NoError(t, err)
	olderIn, err := clk.At(yesterday, "23:50")
	require.NoError(t, err)
	olderID := insertSession(t, ctx, clk, userID, olderIn, nil)
	newerID := insertSession(t, ctx, clk, userID, now, nil)

	closed, err := svc.CheckOut(authCtx)
	require.NoError(t, err)
	assert.Equal(t, newerID, closed.ID)

	// The older active session stays open for an admin to resolve.
	var checkOut *time.Time
	err = db.QueryRow(ctx, `SELECT check_out_at FROM attendances WHERE id = $1`, olderID).Scan(&checkOut)
	require.NoError(t, err)
	assert.Nil(t, checkOut)
}

func TestCheckoutSettlesApprovedOvertime(t *testing.T) {
	db := attTestInit(t)
	ctx := context.Background()
	truncateAttTables(t, ctx)

	svc, jwtSvc, clk := newAttService(db)
	userID := createAttTestUser(t, ctx)
	authCtx := authedCtx(t, jwtSvc, userID, user.RoleEmployee, nil)

	checkIn := clk.Now().Add(-5 * time.Hour)
	attID := insertSession(t, ctx, clk, userID, checkIn, nil)

	otID := uuid.New().String()
	_, err := db.Exec(ctx, `
		INSERT INTO requests (id, user_id, type, status, date, estimated_end_at, reason, approved_by, approved_at)
		VALUES ($1, $2, 'OT_REQUEST', 'APPROVED', $3, $4, 'release', $2, now())
	`, otID, userID, clk.DateKey(checkIn), checkIn)
	require.NoError(t, err)

	_, err = svc.CheckOut(authCtx)
	require.NoError(t, err)

	var minutes *int
	err = db.QueryRow(ctx, `SELECT actual_ot_minutes FROM requests WHERE id = $1`, otID).Scan(&minutes)
	require.NoError(t, err)
	require.NotNil(t, minutes)
	assert.GreaterOrEqual(t, *minutes, 0)

	var otApproved bool
	err = db.QueryRow(ctx, `SELECT ot_approved FROM attendances WHERE id = $1`, attID).Scan(&otApproved)
	require.NoError(t, err)
	assert.True(t, otApproved)
}
