package user

import "time"

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER" // Can approve requests for their team
	RoleAdmin    Role = "ADMIN"   // Full access
)

func IsValidRole(r string) bool {
	switch Role(r) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string
	EmployeeCode string
	Name         string
	Email        string
	Username     *string
	PasswordHash string
	Role         Role
	TeamID       *string
	StartDate    *string // YYYY-MM-DD
	IsActive     bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	TeamName *string
}

// IsDeleted reports whether the user is soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
