package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/auth"
	"github.com/workpulse/attendance-backend-go/internal/domain/holiday"
	"github.com/workpulse/attendance-backend-go/internal/domain/request"
	"github.com/workpulse/attendance-backend-go/internal/domain/team"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

// accessDeniedMessage is deliberately uniform: denials never reveal
// whether the target exists or whose it is.
const accessDeniedMessage = "access denied"

// HandleError maps domain errors to HTTP status codes. Anything not
// recognized becomes a generic 500 whose detail goes to the logs only.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		BadRequest(w, "validation failed", validationErrs.ToMap())
		return
	}

	var staleErr *attendance.StaleSessionError
	if errors.As(err, &staleErr) {
		BadRequest(w, staleErr.Error(), nil)
		return
	}
	var tooLongErr *request.SessionTooLongError
	if errors.As(err, &tooLongErr) {
		BadRequest(w, tooLongErr.Error(), nil)
		return
	}
	var windowErr *request.SubmitWindowError
	if errors.As(err, &windowErr) {
		BadRequest(w, windowErr.Error(), nil)
		return
	}
	var overlapErr *request.LeaveOverlapError
	if errors.As(err, &overlapErr) {
		Conflict(w, overlapErr.Error())
		return
	}
	var attConflictErr *request.AttendanceConflictError
	if errors.As(err, &attConflictErr) {
		Conflict(w, attConflictErr.Error())
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())

	case errors.Is(err, user.ErrAccessDenied),
		errors.Is(err, user.ErrAdminRequired),
		errors.Is(err, user.ErrApproverRequired):
		Forbidden(w, accessDeniedMessage)

	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, request.ErrRequestNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, holiday.ErrHolidayNotFound),
		errors.Is(err, team.ErrTeamNotFound):
		NotFound(w, err.Error())

	case errors.Is(err, user.ErrEmployeeCodeExists),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrUsernameExists),
		errors.Is(err, holiday.ErrHolidayExists),
		errors.Is(err, attendance.ErrAttendanceExists),
		errors.Is(err, attendance.ErrSessionClosed),
		errors.Is(err, request.ErrRequestNotPending),
		errors.Is(err, request.ErrDuplicatePending),
		errors.Is(err, request.ErrAdjustedTimesOrder):
		Conflict(w, err.Error())

	case errors.Is(err, user.ErrUserDeleted),
		errors.Is(err, user.ErrUserNotDeleted),
		errors.Is(err, user.ErrSelfDelete),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, request.ErrMissingAnchor),
		errors.Is(err, request.ErrCheckoutNotAfter):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "internal error")
	}
}
