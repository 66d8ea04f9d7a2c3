package project

import (
	"context"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/user"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (Project, error)

	// ListMembers returns the active users assigned to a project, the
	// analytics scope when a project_id filter is given.
	ListMembers(ctx context.Context, projectID string) ([]user.User, error)
}
