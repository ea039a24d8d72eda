package user

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

// OptionalString distinguishes an absent JSON field from an explicit
// null: Set is true when the field appeared at all, Valid is false when
// it was null.
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		return nil
	}
	o.Valid = true
	return json.Unmarshal(b, &o.Value)
}

type CreateUserRequest struct {
	EmployeeCode string  `json:"employee_code"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	Username     *string `json:"username,omitempty"`
	TeamID       *string `json:"team_id,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// Normalize trims strings and case-folds the email.
func (r *CreateUserRequest) Normalize() {
	r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Username != nil {
		trimmed := strings.TrimSpace(*r.Username)
		if trimmed == "" {
			r.Username = nil
		} else {
			r.Username = &trimmed
		}
	}
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{Field: "employee_code", Message: "employee_code is required"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "invalid email format"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if !IsValidRole(r.Role) {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be one of: EMPLOYEE, MANAGER, ADMIN"})
	}
	if r.Username != nil && !validator.IsValidUsername(*r.Username) {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "username must be 3-50 characters (letters, digits, ., _, -)"})
	}
	if r.StartDate != nil {
		if _, valid := validator.IsValidDate(*r.StartDate); !valid {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateUserRequest is the whitelist of updatable fields. Absent fields
// mean "unchanged"; team_id accepts "" to clear the assignment but an
// explicit null is rejected.
type UpdateUserRequest struct {
	ID        string         `json:"-"`
	Name      *string        `json:"name,omitempty"`
	Email     *string        `json:"email,omitempty"`
	Username  *string        `json:"username,omitempty"`
	TeamID    OptionalString `json:"team_id"`
	IsActive  *bool          `json:"is_active,omitempty"`
	StartDate *string        `json:"start_date,omitempty"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	if r.Email != nil {
		folded := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &folded
	}
	if r.Username != nil {
		trimmed := strings.TrimSpace(*r.Username)
		r.Username = &trimmed
	}
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not be empty"})
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "invalid email format"})
	}
	if r.Username != nil && !validator.IsValidUsername(*r.Username) {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "username must be 3-50 characters (letters, digits, ., _, -)"})
	}
	if r.TeamID.Set && !r.TeamID.Valid {
		errs = append(errs, validator.ValidationError{Field: "team_id", Message: "team_id must not be null; send \"\" to clear the assignment"})
	}
	if r.StartDate != nil {
		if _, valid := validator.IsValidDate(*r.StartDate); !valid {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ResetPasswordRequest struct {
	ID          string `json:"-"`
	NewPassword string `json:"new_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.NewPassword) < 8 {
		errs = append(errs, validator.ValidationError{Field: "new_password", Message: "password must be at least 8 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListUsersFilter struct {
	Page           int
	Limit          int
	Search         string
	TeamID         *string
	IncludeDeleted bool
}

type UserResponse struct {
	ID           string  `json:"id"`
	EmployeeCode string  `json:"employee_code"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Username     *string `json:"username,omitempty"`
	Role         string  `json:"role"`
	TeamID       *string `json:"team_id,omitempty"`
	TeamName     *string `json:"team_name,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	IsActive     bool    `json:"is_active"`
	DeletedAt    *string `json:"deleted_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func ToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		EmployeeCode: u.EmployeeCode,
		Name:         u.Name,
		Email:        u.Email,
		Username:     u.Username,
		Role:         string(u.Role),
		TeamID:       u.TeamID,
		TeamName:     u.TeamName,
		StartDate:    u.StartDate,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339),
	}
	if u.DeletedAt != nil {
		deleted := u.DeletedAt.Format(time.RFC3339)
		resp.DeletedAt = &deleted
	}
	return resp
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ListUsersResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

type DeleteUserResponse struct {
	User            UserResponse `json:"user"`
	RestoreDeadline string       `json:"restore_deadline"`
}

type CascadeDeleted struct {
	Attendances int64 `json:"attendances"`
	Requests    int64 `json:"requests"`
}

type PurgeResponse struct {
	Purged         int            `json:"purged"`
	CascadeDeleted CascadeDeleted `json:"cascade_deleted"`
}
