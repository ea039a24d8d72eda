package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/request"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
)

type requestRepository struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) request.RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `
	r.id, r.user_id, r.type, r.status,
	to_char(r.date, 'YYYY-MM-DD'),
	to_char(r.check_in_date, 'YYYY-MM-DD'), to_char(r.check_out_date, 'YYYY-MM-DD'),
	r.requested_check_in_at, r.requested_check_out_at,
	to_char(r.leave_start_date, 'YYYY-MM-DD'), to_char(r.leave_end_date, 'YYYY-MM-DD'),
	r.leave_type, r.leave_days_count,
	r.estimated_end_at, r.actual_ot_minutes,
	r.reason, r.approved_by, r.approved_at, r.created_at, r.updated_at,
	u.name, u.team_id
`

func scanRequest(row pgx.Row) (*request.Request, error) {
	var req request.Request
	err := row.Scan(
		&req.ID, &req.UserID, &req.Type, &req.Status,
		&req.Date,
		&req.CheckInDate, &req.CheckOutDate,
		&req.RequestedCheckInAt, &req.RequestedCheckOutAt,
		&req.LeaveStartDate, &req.LeaveEndDate,
		&req.LeaveType, &req.LeaveDaysCount,
		&req.EstimatedEndAt, &req.ActualOTMinutes,
		&req.Reason, &req.ApprovedBy, &req.ApprovedAt, &req.CreatedAt, &req.UpdatedAt,
		&req.SubmitterName, &req.SubmitterTeamID,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create implements request.RequestRepository. The partial unique
// indexes on (user_id, date, type, PENDING) turn a concurrent duplicate
// submission into ErrDuplicatePending for the loser.
func (r *requestRepository) Create(ctx context.Context, req *request.Request) error {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.ClearForeignFields()

	query := `
		INSERT INTO requests (
			id, user_id, type, status, date,
			check_in_date, check_out_date, requested_check_in_at, requested_check_out_at,
			leave_start_date, leave_end_date, leave_type, leave_days_count,
			estimated_end_at, actual_ot_minutes, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.UserID, req.Type, req.Status, req.Date,
		req.CheckInDate, req.CheckOutDate, req.RequestedCheckInAt, req.RequestedCheckOutAt,
		req.LeaveStartDate, req.LeaveEndDate, req.LeaveType, req.LeaveDaysCount,
		req.EstimatedEndAt, req.ActualOTMinutes, req.Reason,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "requests_pending_adjust_key") ||
			database.IsUniqueViolation(err, "requests_pending_ot_key") {
			return request.ErrDuplicatePending
		}
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetByID implements request.RequestRepository.
func (r *requestRepository) GetByID(ctx context.Context, id string) (*request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, request.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// HasPending implements request.RequestRepository.
func (r *requestRepository) HasPending(ctx context.Context, userID, date string, typ request.Type) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE user_id = $1 AND date = $2 AND type = $3 AND status = 'PENDING'
		)
	`, userID, date, typ).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists, nil
}

// FindLeaveOverlap implements request.RequestRepository. Overlap means
// a shared date; ranges that merely touch on consecutive days pass.
func (r *requestRepository) FindLeaveOverlap(ctx context.Context, userID, start, end string) (*request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		  AND r.type = 'LEAVE'
		  AND r.status IN ('APPROVED', 'PENDING')
		  AND r.leave_start_date <= $3::date
		  AND r.leave_end_date >= $2::date
		ORDER BY r.status, r.leave_start_date
		LIMIT 1
	`

	req, err := scanRequest(q.QueryRow(ctx, query, userID, start, end))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	return req, nil
}

// SetStatus implements request.RequestRepository. The status = PENDING
// filter is the compare-and-set gate: the losing concurrent approver
// observes zero rows and gets ErrRequestNotPending.
func (r *requestRepository) SetStatus(ctx context.Context, id string, status request.Status, approvedBy string, approvedAt time.Time) (*request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH updated AS (
			UPDATE requests
			SET status = $2, approved_by = $3, approved_at = $4, updated_at = now()
			WHERE id = $1 AND status = 'PENDING'
			RETURNING *
		)
		SELECT ` + requestColumns + `
		FROM updated r
		JOIN users u ON u.id = r.user_id
	`

	req, err := scanRequest(q.QueryRow(ctx, query, id, status, approvedBy, approvedAt))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, request.ErrRequestNotPending
		}
		return nil, fmt.Errorf("failed to transition request: %w", err)
	}
	return req, nil
}

// ListByUser implements request.RequestRepository.
func (r *requestRepository) ListByUser(ctx context.Context, userID string) ([]request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`

	return r.queryRequests(ctx, q, query, userID)
}

// ListPending implements request.RequestRepository.
func (r *requestRepository) ListPending(ctx context.Context, teamID *string) ([]request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.status = 'PENDING'
	`
	args := []interface{}{}
	if teamID != nil {
		query += " AND u.team_id = $1"
		args = append(args, *teamID)
	}
	query += " ORDER BY r.created_at"

	return r.queryRequests(ctx, q, query, args...)
}

// FindApprovedOvertime implements request.RequestRepository.
func (r *requestRepository) FindApprovedOvertime(ctx context.Context, userID, date string) (*request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.date = $2
		  AND r.type = 'OT_REQUEST' AND r.status = 'APPROVED'
		LIMIT 1
	`

	req, err := scanRequest(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find approved overtime: %w", err)
	}
	return req, nil
}

// SetActualOvertimeMinutes implements request.RequestRepository.
func (r *requestRepository) SetActualOvertimeMinutes(ctx context.Context, id string, minutes int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE requests SET actual_ot_minutes = $2, updated_at = now() WHERE id = $1
	`, id, minutes)
	if err != nil {
		return fmt.Errorf("failed to record overtime minutes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return request.ErrRequestNotFound
	}
	return nil
}

func (r *requestRepository) queryRequests(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]request.Request, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var items []request.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	return items, nil
}
