package user

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// GetByID returns the user regardless of deletion state; callers
	// decide whether a soft-deleted row is acceptable.
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByIdentifier resolves a login identifier (email, employee code
	// or username) against live users only.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, filter ListUsersFilter) ([]User, int64, error)
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
	Restore(ctx context.Context, id string) error
	// PurgeExpired hard-deletes users soft-deleted before cutoff along
	// with their attendances and requests, all in one transaction.
	PurgeExpired(ctx context.Context, cutoff time.Time) (purged int, attendances, requests int64, err error)
}
