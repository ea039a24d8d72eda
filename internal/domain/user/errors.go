package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmployeeCodeExists    = errors.New("employee code already registered")
	ErrEmailExists           = errors.New("email already registered")
	ErrUsernameExists        = errors.New("username already registered")
	ErrInvalidEmailFormat    = errors.New("invalid email format")
	ErrInvalidPasswordLength = errors.New("password must be at least 8 characters")
	ErrUserDeleted           = errors.New("user is deleted")
	ErrUserNotDeleted        = errors.New("user is not deleted")
	ErrSelfDelete            = errors.New("cannot delete your own account")
	ErrAccessDenied          = errors.New("access denied")
	ErrAdminRequired         = errors.New("admin privilege required")
	ErrApproverRequired      = errors.New("manager or admin privilege required")
)
