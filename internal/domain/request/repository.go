package request

import (
	"context"
	"time"
)

type RequestRepository interface {
	Create(ctx context.Context, r *Request) error
	// GetByID joins the submitter's name and team for approval scoping.
	GetByID(ctx context.Context, id string) (*Request, error)
	// HasPending reports whether a PENDING request of the given type
	// exists for (userID, date).
	HasPending(ctx context.Context, userID, date string, typ Type) (bool, error)
	// FindLeaveOverlap returns an APPROVED or PENDING leave of the user
	// overlapping [start, end], or nil. Adjacent ranges do not overlap.
	FindLeaveOverlap(ctx context.Context, userID, start, end string) (*Request, error)
	// SetStatus is the compare-and-set transition gate: it updates the
	// row only while status is still PENDING and returns
	// ErrRequestNotPending when a concurrent writer won.
	SetStatus(ctx context.Context, id string, status Status, approvedBy string, approvedAt time.Time) (*Request, error)
	ListByUser(ctx context.Context, userID string) ([]Request, error)
	// ListPending returns PENDING requests, restricted to submitters of
	// teamID when non-nil.
	ListPending(ctx context.Context, teamID *string) ([]Request, error)
	// FindApprovedOvertime returns the user's APPROVED OT_REQUEST for
	// the date, or nil.
	FindApprovedOvertime(ctx context.Context, userID, date string) (*Request, error)
	SetActualOvertimeMinutes(ctx context.Context, id string, minutes int) error
}
