package permission

import "context"

type Repository interface {
	// ListAll returns every grant row
	ListAll(ctx context.Context) ([]Grant, error)

	// Create inserts one grant
	Create(ctx context.Context, grant Grant) (Grant, error)

	// DeleteByPermission removes all non-system grants of a permission name.
	// Returns the number of rows removed.
	DeleteByPermission(ctx context.Context, name string) (int64, error)

	// HasSystemGrant reports whether any system row carries the permission name
	HasSystemGrant(ctx context.Context, name string) (bool, error)

	// ReplaceMatrix swaps the whole non-system grant set in one transaction
	ReplaceMatrix(ctx context.Context, matrix Matrix) error

	// SeedDefaults inserts missing built-in grants, leaving existing rows alone
	SeedDefaults(ctx context.Context, grants []Grant) error
}
