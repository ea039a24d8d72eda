package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	u.id, u.employee_code, u.name, u.email, u.username, u.password_hash,
	u.role, u.team_id, to_char(u.start_date, 'YYYY-MM-DD'), u.is_active,
	u.deleted_at, u.created_at, u.updated_at, t.name
`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.EmployeeCode, &u.Name, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.TeamID, &u.StartDate, &u.IsActive,
		&u.DeletedAt, &u.CreatedAt, &u.UpdatedAt, &u.TeamName,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// translateUniqueViolation maps constraint violations to the domain
// uniqueness sentinels.
func translateUniqueViolation(err error) error {
	switch {
	case database.IsUniqueViolation(err, "users_employee_code_key"):
		return user.ErrEmployeeCodeExists
	case database.IsUniqueViolation(err, "users_email_key"):
		return user.ErrEmailExists
	case database.IsUniqueViolation(err, "users_username_key"):
		return user.ErrUsernameExists
	}
	return nil
}

// Create implements user.UserRepository.
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	q := GetQuerier(ctx, r.db)

	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (
			id, employee_code, name, email, username, password_hash,
			role, team_id, start_date, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		u.ID, u.EmployeeCode, u.Name, u.Email, u.Username, u.PasswordHash,
		u.Role, u.TeamID, u.StartDate, u.IsActive,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if domainErr := translateUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID implements user.UserRepository.
func (r *userRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN teams t ON t.id = u.team_id
		WHERE u.id = $1
	`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// GetByIdentifier implements user.UserRepository.
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN teams t ON t.id = u.team_id
		WHERE u.deleted_at IS NULL
		  AND (lower(u.email) = lower($1) OR u.employee_code = $1 OR u.username = $1)
		LIMIT 1
	`

	u, err := scanUser(q.QueryRow(ctx, query, identifier))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}
	return u, nil
}

// Update implements user.UserRepository. It writes the whole whitelist;
// the service applies field-by-field changes to a loaded entity first.
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = $2, email = $3, username = $4, team_id = $5,
		    is_active = $6, start_date = $7, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		u.ID, u.Name, u.Email, u.Username, u.TeamID, u.IsActive, u.StartDate,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.ErrUserNotFound
		}
		if domainErr := translateUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// List implements user.UserRepository.
func (r *userRepository) List(ctx context.Context, filter user.ListUsersFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := " WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if !filter.IncludeDeleted {
		where += " AND u.deleted_at IS NULL"
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (u.name ILIKE $%d OR u.email ILIKE $%d OR u.employee_code ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	if filter.TeamID != nil {
		where += fmt.Sprintf(" AND u.team_id = $%d", argPos)
		args = append(args, *filter.TeamID)
		argPos++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM users u" + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN teams t ON t.id = u.team_id` + where +
		fmt.Sprintf(" ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read users: %w", err)
	}

	return users, total, nil
}

// SoftDelete implements user.UserRepository. The conditional guard
// keeps a concurrent double-delete from overwriting the first deletion
// timestamp.
func (r *userRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users SET deleted_at = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDeleted
	}
	return nil
}

// Restore implements user.UserRepository.
func (r *userRepository) Restore(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users SET deleted_at = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to restore user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotDeleted
	}
	return nil
}

// PurgeExpired implements user.UserRepository. The cascade runs in one
// transaction so a failure never leaves orphaned rows behind.
func (r *userRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int, int64, int64, error) {
	var purged int
	var attendances, requests int64

	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id FROM users WHERE deleted_at IS NOT NULL AND deleted_at < $1
		`, cutoff)
		if err != nil {
			return fmt.Errorf("failed to select expired users: %w", err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan expired user id: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read expired user ids: %w", err)
		}

		if len(ids) == 0 {
			return nil
		}

		tag, err := tx.Exec(ctx, `DELETE FROM attendances WHERE user_id = ANY($1)`, ids)
		if err != nil {
			return fmt.Errorf("failed to purge attendances: %w", err)
		}
		attendances = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM requests WHERE user_id = ANY($1)`, ids)
		if err != nil {
			return fmt.Errorf("failed to purge requests: %w", err)
		}
		requests = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM users WHERE id = ANY($1)`, ids)
		if err != nil {
			return fmt.Errorf("failed to purge users: %w", err)
		}
		purged = int(tag.RowsAffected())

		return nil
	})
	if err != nil {
		return 0, 0, 0, err
	}

	return purged, attendances, requests, nil
}
