package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.user_id, to_char(a.date, 'YYYY-MM-DD'), a.check_in_at,
	a.check_out_at, a.ot_approved, a.created_at, a.updated_at
`

func scanAttendance(row pgx.Row) (*attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.UserID, &a.Date, &a.CheckInAt,
		&a.CheckOutAt, &a.OTApproved, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, a *attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO attendances (id, user_id, date, check_in_at, check_out_at, ot_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.ID, a.UserID, a.Date, a.CheckInAt, a.CheckOutAt, a.OTApproved,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "attendances_user_date_key") {
			return attendance.ErrAttendanceExists
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1 AND a.date = $2
	`

	a, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}
	return a, nil
}

// ListOpenByUser implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpenByUser(ctx context.Context, userID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1 AND a.check_out_at IS NULL
		ORDER BY a.check_in_at DESC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open session: %w", err)
		}
		sessions = append(sessions, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read open sessions: %w", err)
	}
	return sessions, nil
}

// Close implements attendance.AttendanceRepository. The check_out_at IS
// NULL guard makes concurrent closes race-safe: exactly one writer wins.
func (r *attendanceRepository) Close(ctx context.Context, id string, at time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances a
		SET check_out_at = $2, updated_at = now()
		WHERE a.id = $1 AND a.check_out_at IS NULL
		RETURNING ` + attendanceColumns

	a, err := scanAttendance(q.QueryRow(ctx, query, id, at))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, attendance.ErrSessionClosed
		}
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	return a, nil
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepository) Upsert(ctx context.Context, a *attendance.Attendance) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO attendances (id, user_id, date, check_in_at, check_out_at, ot_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date) DO UPDATE
		SET check_in_at = EXCLUDED.check_in_at,
		    check_out_at = EXCLUDED.check_out_at,
		    ot_approved = EXCLUDED.ot_approved,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.ID, a.UserID, a.Date, a.CheckInAt, a.CheckOutAt, a.OTApproved,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return a, nil
}

// SetOvertimeApproved implements attendance.AttendanceRepository.
func (r *attendanceRepository) SetOvertimeApproved(ctx context.Context, id string, approved bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendances SET ot_approved = $2, updated_at = now() WHERE id = $1
	`, id, approved)
	if err != nil {
		return fmt.Errorf("failed to set overtime flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByUserBetween implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByUserBetween(ctx context.Context, userID, from, to string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date
	`

	rows, err := q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var items []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendances: %w", err)
	}
	return items, nil
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByDate(ctx context.Context, date string, teamID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `, u.name, u.employee_code, u.team_id
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.date = $1 AND u.deleted_at IS NULL
	`
	args := []interface{}{date}
	if teamID != nil {
		query += " AND u.team_id = $2"
		args = append(args, *teamID)
	}
	query += " ORDER BY a.check_in_at"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances by date: %w", err)
	}
	defer rows.Close()

	var items []attendance.Attendance
	for rows.Next() {
		var a attendance.Attendance
		err := rows.Scan(
			&a.ID, &a.UserID, &a.Date, &a.CheckInAt,
			&a.CheckOutAt, &a.OTApproved, &a.CreatedAt, &a.UpdatedAt,
			&a.UserName, &a.EmployeeCode, &a.TeamID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance rows: %w", err)
	}
	return items, nil
}

// FirstDateInRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) FirstDateInRange(ctx context.Context, userID, from, to string) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT to_char(a.date, 'YYYY-MM-DD')
		FROM attendances a
		WHERE a.user_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date
		LIMIT 1
	`

	var date string
	err := q.QueryRow(ctx, query, userID, from, to).Scan(&date)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to check attendance range: %w", err)
	}
	return date, nil
}
