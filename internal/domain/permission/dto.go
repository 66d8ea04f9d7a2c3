package permission

import (
	"strings"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/validator"
)

type CreateGrantRequest struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
}

func (r *CreateGrantRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.Permission = strings.ToLower(strings.TrimSpace(r.Permission))

	if r.Role == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role is required",
		})
	} else if r.Role == "admin" {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "admin holds every permission implicitly; grants cannot be added to it",
		})
	}

	if r.Permission == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "permission",
			Message: "permission is required",
		})
	} else if !validator.IsValidPermissionName(r.Permission) {
		errs = append(errs, validator.ValidationError{
			Field:   "permission",
			Message: "permission must be dotted lowercase, e.g. attendance.view_all",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GrantResponse struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Permission string `json:"permission"`
	IsSystem   bool   `json:"is_system"`
}
