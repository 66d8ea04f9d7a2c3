package permission

import "context"

// Resolver answers permission questions from an in-memory snapshot of the
// grant table. It is the single authority for both the server-side guards
// and the matrix the client caches for UI gating.
type Resolver interface {
	// HasPermission is deny-by-default: unknown roles and unknown permission
	// names resolve false. The admin role always resolves true, without a
	// table lookup.
	HasPermission(role string, perm string) bool

	// PermissionsForRole returns the sorted permission names a role holds
	PermissionsForRole(role string) []string

	// Matrix returns a copy of the full role -> permissions table
	Matrix() Matrix

	// Refresh reloads the snapshot from persistent storage
	Refresh(ctx context.Context) error
}

// Service adds the mutating admin surface on top of Resolver.
type Service interface {
	Resolver

	ListGrants(ctx context.Context) ([]GrantResponse, error)
	CreateGrant(ctx context.Context, req CreateGrantRequest) (GrantResponse, error)
	DeleteGrants(ctx context.Context, permissionName string) error

	// ReplaceMatrix swaps every non-system grant for the given table in one
	// transaction. System grants are left untouched.
	ReplaceMatrix(ctx context.Context, matrix Matrix) error
}
