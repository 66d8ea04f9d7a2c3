package user

import "context"

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByOAuth(ctx context.Context, provider string, providerID string) (User, error)

	// ListActiveNonAdmins returns every active user outside the admin role.
	// The attendance analytics default scope when no project is given.
	ListActiveNonAdmins(ctx context.Context) ([]User, error)
}
