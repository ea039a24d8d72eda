package auth

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

	"github.com/workpulse/attendance-backend-go/internal/domain/auth"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
)

var testAuthDB *database.DB

const testSecret = "test-secret-key-for-jwt"

func authTestInit(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testAuthDB == nil {
		var err error
		testAuthDB, err = database.NewPostgreSQLDB(dsn)
		require.NoError(t, err)
	}
	return testAuthDB
}

func truncateAuthTables(t *testing.T, ctx context.Context) {
	tables := []string{"audit_logs", "requests", "attendances", "holidays", "users", "teams"}
	for _, table := range tables {
		_, err := testAuthDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
}

func newAuthService(db *database.DB) (*Service, jwt.Service) {
	jwtSvc := jwt.NewJWTService(testSecret, "1h")
	return NewService(postgresql.NewUserRepository(db), jwtSvc), jwtSvc
}

type authTestUser struct {
	id       string
	code     string
	email    string
	username string
}

func createAuthTestUser(t *testing.T, ctx context.Context, password string, active bool) authTestUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := authTestUser{
		id:       uuid.New().String(),
		code:     fmt.Sprintf("EMP-%d", time.Now().UnixNano()),
		username: fmt.Sprintf("user%d", time.Now().UnixNano()),
	}
	u.email = u.code + "@example.com"
	_, err = testAuthDB.Exec(ctx, `
		INSERT INTO users (id, employee_code, name, email, username, password_hash, role, is_active)
		VALUES ($1, $2, 'Test User', $3, $4, $5, 'EMPLOYEE', $6)
	`, u.id, u.code, u.email, u.username, string(hash), active)
	require.NoError(t, err)
	return u
}

func TestLoginIdentifiers(t *testing.T) {
	db := authTestInit(t)
	ctx := context.Background()
	truncateAuthTables(t, ctx)

	svc, _ := newAuthService(db)
	u := createAuthTestUser(t, ctx, "s3cret-pass", true)

	for _, identifier := range []string{u.email, u.code, u.username} {
		resp, err := svc.Login(ctx, &auth.LoginRequest{Identifier: identifier, Password: "s3cret-pass"})
		require.NoError(t, err, "identifier %s", identifier)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, u.id, resp.User.ID)
	}

	// Surrounding whitespace is trimmed before the lookup.
	resp, err := svc.Login(ctx, &auth.LoginRequest{Identifier: "  " + u.email + "  ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, u.id, resp.User.ID)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	db := authTestInit(t)
	ctx := context.Background()
	truncateAuthTables(t, ctx)

	svc, _ := newAuthService(db)
	u := createAuthTestUser(t, ctx, "s3cret-pass", true)
	inactive := createAuthTestUser(t, ctx, "s3cret-pass", false)

	_, err := svc.Login(ctx, &auth.LoginRequest{Identifier: u.email, Password: "wrong-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &auth.LoginRequest{Identifier: "ghost@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &auth.LoginRequest{Identifier: inactive.email, Password: "s3cret-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Soft-deleted users cannot authenticate.
	_, err = db.Exec(ctx, `UPDATE users SET deleted_at = now() WHERE id = $1`, u.id)
	require.NoError(t, err)
	_, err = svc.Login(ctx, &auth.LoginRequest{Identifier: u.email, Password: "s3cret-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	db := authTestInit(t)
	ctx := context.Background()
	truncateAuthTables(t, ctx)

	svc, jwtSvc := newAuthService(db)
	u := createAuthTestUser(t, ctx, "s3cret-pass", true)

	tokenStr, _, err := jwtSvc.GenerateAccessToken(u.id, user.RoleEmployee, nil)
	require.NoError(t, err)
	token, err := jwtSvc.JWTAuth().Decode(tokenStr)
	require.NoError(t, err)
	authedCtx := jwtauth.NewContext(ctx, token, nil)

	me, err := svc.Me(authedCtx)
	require.NoError(t, err)
	assert.Equal(t, u.id, me.ID)

	// A token for a user deleted after issuance stops resolving.
	_, err = db.Exec(ctx, `UPDATE users SET deleted_at = now() WHERE id = $1`, u.id)
	require.NoError(t, err)
	_, err = svc.Me(authedCtx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// No token at all.
	_, err = svc.Me(ctx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
