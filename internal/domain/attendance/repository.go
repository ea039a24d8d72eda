package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	Create(ctx context.Context, a *Attendance) error
	GetByUserAndDate(ctx context.Context, userID, date string) (*Attendance, error)
	// ListOpenByUser returns every open session for the user ordered by
	// check_in_at descending. The invariant says at most one, but the
	// engine scans defensively.
	ListOpenByUser(ctx context.Context, userID string) ([]Attendance, error)
	// Close sets check_out_at on an open session. Returns
	// ErrSessionClosed when the session was already closed by a
	// concurrent writer.
	Close(ctx context.Context, id string, at time.Time) (*Attendance, error)
	// Upsert creates or replaces the (user_id, date) row; used by
	// adjust-time approval inside a transaction.
	Upsert(ctx context.Context, a *Attendance) (*Attendance, error)
	SetOvertimeApproved(ctx context.Context, id string, approved bool) error
	ListByUserBetween(ctx context.Context, userID, from, to string) ([]Attendance, error)
	// ListByDate returns all sessions on a date joined with user name,
	// employee code and team, optionally filtered by team.
	ListByDate(ctx context.Context, date string, teamID *string) ([]Attendance, error)
	// FirstDateInRange reports the first date key in [from, to] that
	// already has an attendance row for the user, or "" when none does.
	FirstDateInRange(ctx context.Context, userID, from, to string) (string, error)
}
