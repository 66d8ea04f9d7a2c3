package response

import (
	"errors"
	"net/http"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/auth"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/permission"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		Unauthorized(w, "OAuth state mismatch")
	case errors.Is(err, auth.ErrOAuthDisabled):
		NotFound(w, "Google login is not configured")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "Account is deactivated")
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "An open session already exists")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "No open session to close")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrExceptionNotFound):
		NotFound(w, "Attendance exception not found")
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		BadRequest(w, "check_out_time must not be before check_in_time", nil)

	// Permission domain errors
	case errors.Is(err, permission.ErrGrantNotFound):
		NotFound(w, "Permission grant not found")
	case errors.Is(err, permission.ErrGrantExists):
		Conflict(w, "Permission grant already exists")
	case errors.Is(err, permission.ErrSystemGrant):
		BadRequest(w, "System permission grants cannot be deleted", nil)

	// Project domain errors
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
