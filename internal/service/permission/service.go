package permission

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/jwtauth/v5"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/activitylog"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/permission"
)

// actorFromContext pulls the acting user's ID out of the JWT claims for the
// audit trail. Empty when the context carries no token, e.g. seeding.
func actorFromContext(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}

// PermissionServiceImpl resolves permission checks from an in-memory snapshot
// of the grant table. The snapshot is loaded once at startup and refreshed
// after every mutation; reads never touch the database.
type PermissionServiceImpl struct {
	repo         permission.Repository
	activityRepo activitylog.Repository

	mu     sync.RWMutex
	grants map[string]map[string]bool // role -> permission -> true
}

func NewPermissionService(repo permission.Repository, activityRepo activitylog.Repository) *PermissionServiceImpl {
	return &PermissionServiceImpl{
		repo:         repo,
		activityRepo: activityRepo,
		grants:       make(map[string]map[string]bool),
	}
}

// Bootstrap seeds the built-in grants and loads the snapshot. Called once
// from main before the server starts accepting requests.
func (s *PermissionServiceImpl) Bootstrap(ctx context.Context) error {
	if err := s.repo.SeedDefaults(ctx, permission.DefaultGrants); err != nil {
		return fmt.Errorf("failed to seed default grants: %w", err)
	}
	return s.Refresh(ctx)
}

// Refresh implements permission.Resolver.
func (s *PermissionServiceImpl) Refresh(ctx context.Context) error {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load permission grants: %w", err)
	}

	grants := make(map[string]map[string]bool)
	for _, g := range rows {
		perms, ok := grants[g.Role]
		if !ok {
			perms = make(map[string]bool)
			grants[g.Role] = perms
		}
		perms[g.Permission] = true
	}

	s.mu.Lock()
	s.grants = grants
	s.mu.Unlock()

	return nil
}

// HasPermission implements permission.Resolver. Deny by default: an unknown
// role or permission name resolves false, never an error. Admin resolves
// true without consulting the table.
func (s *PermissionServiceImpl) HasPermission(role string, perm string) bool {
	if role == "admin" {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perms, ok := s.grants[role]
	if !ok {
		return false
	}
	return perms[perm]
}

// PermissionsForRole implements permission.Resolver.
func (s *PermissionServiceImpl) PermissionsForRole(role string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perms := make([]string, 0, len(s.grants[role]))
	for name := range s.grants[role] {
		perms = append(perms, name)
	}
	sort.Strings(perms)
	return perms
}

// Matrix implements permission.Resolver.
func (s *PermissionServiceImpl) Matrix() permission.Matrix {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matrix := make(permission.Matrix, len(s.grants))
	for role, perms := range s.grants {
		names := make([]string, 0, len(perms))
		for name := range perms {
			names = append(names, name)
		}
		sort.Strings(names)
		matrix[role] = names
	}
	return matrix
}

// ListGrants implements permission.Service.
func (s *PermissionServiceImpl) ListGrants(ctx context.Context) ([]permission.GrantResponse, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission grants: %w", err)
	}

	responses := make([]permission.GrantResponse, 0, len(rows))
	for _, g := range rows {
		responses = append(responses, permission.GrantResponse{
			ID:         g.ID,
			Role:       g.Role,
			Permission: g.Permission,
			IsSystem:   g.IsSystem,
		})
	}
	return responses, nil
}

// CreateGrant implements permission.Service.
func (s *PermissionServiceImpl) CreateGrant(ctx context.Context, req permission.CreateGrantRequest) (permission.GrantResponse, error) {
	if err := req.Validate(); err != nil {
		return permission.GrantResponse{}, err
	}

	grant, err := s.repo.Create(ctx, permission.Grant{
		Role:       req.Role,
		Permission: req.Permission,
	})
	if err != nil {
		return permission.GrantResponse{}, err
	}

	if err := s.Refresh(ctx); err != nil {
		return permission.GrantResponse{}, err
	}

	if err := s.activityRepo.Append(ctx, activitylog.Entry{
		Action:      activitylog.ActionPermissionGrant,
		EntityType:  "role_permission",
		EntityID:    grant.ID,
		Description: fmt.Sprintf("granted %s to role %s", grant.Permission, grant.Role),
		UserID:      actorFromContext(ctx),
	}); err != nil {
		return permission.GrantResponse{}, fmt.Errorf("failed to record grant activity: %w", err)
	}

	return permission.GrantResponse{
		ID:         grant.ID,
		Role:       grant.Role,
		Permission: grant.Permission,
		IsSystem:   grant.IsSystem,
	}, nil
}

// ReplaceMatrix implements permission.Service. Validates every entry before
// touching storage so a bad row cannot leave a half-replaced table.
func (s *PermissionServiceImpl) ReplaceMatrix(ctx context.Context, matrix permission.Matrix) error {
	normalized := make(permission.Matrix, len(matrix))
	for role, perms := range matrix {
		req := permission.CreateGrantRequest{Role: role}
		for _, perm := range perms {
			req.Permission = perm
			if err := req.Validate(); err != nil {
				return err
			}
			normalized[req.Role] = append(normalized[req.Role], req.Permission)
		}
	}

	if err := s.repo.ReplaceMatrix(ctx, normalized); err != nil {
		return err
	}

	if err := s.Refresh(ctx); err != nil {
		return err
	}

	return s.activityRepo.Append(ctx, activitylog.Entry{
		Action:      activitylog.ActionPermissionGrant,
		EntityType:  "role_permission",
		EntityID:    "matrix",
		Description: fmt.Sprintf("replaced permission matrix for %d role(s)", len(normalized)),
		UserID:      actorFromContext(ctx),
	})
}

// DeleteGrants implements permission.Service. Removes every non-system grant
// of the permission name across all roles. System grants block the delete.
func (s *PermissionServiceImpl) DeleteGrants(ctx context.Context, permissionName string) error {
	permissionName = strings.ToLower(strings.TrimSpace(permissionName))

	system, err := s.repo.HasSystemGrant(ctx, permissionName)
	if err != nil {
		return err
	}
	if system {
		return permission.ErrSystemGrant
	}

	removed, err := s.repo.DeleteByPermission(ctx, permissionName)
	if err != nil {
		return err
	}
	if removed == 0 {
		return permission.ErrGrantNotFound
	}

	if err := s.Refresh(ctx); err != nil {
		return err
	}

	return s.activityRepo.Append(ctx, activitylog.Entry{
		Action:      activitylog.ActionPermissionRevoke,
		EntityType:  "role_permission",
		EntityID:    permissionName,
		Description: fmt.Sprintf("revoked %s from %d role(s)", permissionName, removed),
		UserID:      actorFromContext(ctx),
	})
}
