package user

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
	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
)

var testUserDB *database.DB

const (
	testSecret        = "test-secret-key-for-jwt"
	testRetentionDays = 15
)

func userTestInit(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testUserDB == nil {
		var err error
		testUserDB, err = database.NewPostgreSQLDB(dsn)
		require.NoError(t, err)
	}
	return testUserDB
}

func truncateUserTables(t *testing.T, ctx context.Context) {
	tables := []string{"audit_logs", "requests", "attendances", "holidays", "users", "teams"}
	for _, table := range tables {
		_, err := testUserDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
}

func newUserService(db *database.DB) (*Service, jwt.Service, *clock.Clock) {
	clk := clock.New(7)
	jwtSvc := jwt.NewJWTService(testSecret, "1h")
	svc := NewService(
		postgresql.NewUserRepository(db),
		postgresql.NewTeamRepository(db),
		jwtSvc,
		clk,
		bcrypt.MinCost,
		testRetentionDays,
	)
	return svc, jwtSvc, clk
}

func userAuthedCtx(t *testing.T, jwtSvc jwt.Service, userID string, role user.Role) context.Context {
	t.Helper()
	tokenStr, _, err := jwtSvc.GenerateAccessToken(userID, role, nil)
	require.NoError(t, err)
	token, err := jwtSvc.JWTAuth().Decode(tokenStr)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func insertUser(t *testing.T, ctx context.Context, role user.Role, deletedAt *time.Time) string {
	t.Helper()
	id := uuid.New().String()
	code := fmt.Sprintf("EMP-%d", time.Now().UnixNano())
	_, err := testUserDB.Exec(ctx, `
		INSERT INTO users (id, employee_code, name, email, password_hash, role, deleted_at)
		VALUES ($1, $2, 'Test User', $3, 'x', $4, $5)
	`, id, code, code+"@example.com", string(role), deletedAt)
	require.NoError(t, err)
	return id
}

func TestCreateAndGetUser(t *testing.T) {
	db := userTestInit(t)
	ctx := context.Background()
	truncateUserTables(t, ctx)

	svc, jwtSvc, _ := newUserService(db)
	adminID := insertUser(t, ctx, user.RoleAdmin, nil)
	adminCtx := userAuthedCtx(t, jwtSvc, adminID, user.RoleAdmin)

	created, err := svc.Create(adminCtx, &user.CreateUserRequest{
		EmployeeCode: "EMP-1001",
		Name:         "Ana Silva",
		Email:        "Ana.Silva@Example.com",
		Password:     "s3cret-pass",
		Role:         string(user.RoleEmployee),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.silva@example.com", created.Email)
	assert.True(t, created.IsActive)

	got, err := svc.Get(adminCtx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "EMP-1001", got.EmployeeCode)

	// Duplicate employee codes are refused.
	_, err = svc.Create(adminCtx, &user.CreateUserRequest{
		EmployeeCode: "EMP-1001",
		Name:         "Someone Else",
		Email:        "someone@example.com",
		Password:     "s3cret-pass",
		Role:         string(user.RoleEmployee),
	})
	assert.ErrorIs(t, err, user.ErrEmployeeCodeExists)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	db := userTestInit(t)
	ctx := context.Background()
	truncateUserTables(t, ctx)

	svc, jwtSvc, clk := newUserService(db)
	adminID := insertUser(t, ctx, user.RoleAdmin, nil)
	targetID := insertUser(t, ctx, user.RoleEmployee, nil)
	adminCtx := userAuthedCtx(t, jwtSvc, adminID, user.RoleAdmin)

	// Admins cannot delete themselves.
	_, err := svc.Delete(adminCtx, adminID)
	assert.ErrorIs(t, err, user.ErrSelfDelete)

	deleted, err := svc.Delete(adminCtx, targetID)
	require.NoError(t, err)
	deadline, err := time.Parse(time.RFC3339, deleted.RestoreDeadline)
	require.NoError(t, err)
	assert.WithinDuration(t, clk.Now().AddDate(0, 0, testRetentionDays), deadline, time.Minute)

	// Deleting a deleted user reports the state, not a second deletion.
	_, err = svc.Delete(adminCtx, targetID)
	assert.ErrorIs(t, err, user.ErrUserDeleted)

	restored, err := svc.Restore(adminCtx, targetID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	_, err = svc.Restore(adminCtx, targetID)
	assert.ErrorIs(t, err, user.ErrUserNotDeleted)
}

func TestPurgeCascades(t *testing.T) {
	db := userTestInit(t)
	ctx := context.Background()
	truncateUserTables(t, ctx)

	svc, jwtSvc, clk := newUserService(db)
	adminID := insertUser(t, ctx, user.RoleAdmin, nil)
	adminCtx := userAuthedCtx(t, jwtSvc, adminID, user.RoleAdmin)

	// Deleted 20 days ago, past the retention window.
	expiredAt := clk.Now().AddDate(0, 0, -20)
	expiredID := insertUser(t, ctx, user.RoleEmployee, &expiredAt)

	// Deleted yesterday, still restorable.
	recentAt := clk.Now().AddDate(0, 0, -1)
	recentID := insertUser(t, ctx, user.RoleEmployee, &recentAt)

	for i := 0; i < 3; i++ {
		day := expiredAt.AddDate(0, 0, -i-1)
		_, err := db.Exec(ctx, `
			INSERT INTO attendances (id, user_id, date, check_in_at, check_out_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), expiredID, clk.DateKey(day), day, day.Add(9*time.Hour))
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := db.Exec(ctx, `
			INSERT INTO requests (id, user_id, type, status, date, estimated_end_at, reason)
			VALUES ($1, $2, 'OT_REQUEST', 'REJECTED', $3, $4, 'old')
		`, uuid.New().String(), expiredID, clk.DateKey(expiredAt), expiredAt)
		require.NoError(t, err)
	}

	resp, err := svc.Purge(adminCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Purged)
	assert.Equal(t, int64(3), resp.CascadeDeleted.Attendances)
	assert.Equal(t, int64(2), resp.CascadeDeleted.Requests)

	var count int
	err = db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = $1`, expiredID).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The user inside the window survives.
	err = db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = $1`, recentID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A second run finds nothing left to purge.
	resp, err = svc.Purge(adminCtx)
	require.NoError(t, err)
	assert.Zero(t, resp.Purged)
}

func TestAdminOnlyOperations(t *testing.T) {
	db := userTestInit(t)
	ctx := context.Background()
	truncateUserTables(t, ctx)

	svc, jwtSvc, _ := newUserService(db)
	employeeID := insertUser(t, ctx, user.RoleEmployee, nil)
	targetID := insertUser(t, ctx, user.RoleEmployee, nil)
	employeeCtx := userAuthedCtx(t, jwtSvc, employeeID, user.RoleEmployee)

	_, err := svc.Create(employeeCtx, &user.CreateUserRequest{
		EmployeeCode: "EMP-2001",
		Name:         "X",
		Email:        "x@example.com",
		Password:     "s3cret-pass",
		Role:         string(user.RoleEmployee),
	})
	assert.ErrorIs(t, err, user.ErrAccessDenied)

	_, err = svc.Delete(employeeCtx, targetID)
	assert.ErrorIs(t, err, user.ErrAccessDenied)

	_, err = svc.Purge(employeeCtx)
	assert.ErrorIs(t, err, user.ErrAccessDenied)

	err = svc.ResetPassword(employeeCtx, &user.ResetPasswordRequest{ID: targetID, NewPassword: "new-password"})
	assert.ErrorIs(t, err, user.ErrAccessDenied)
}
