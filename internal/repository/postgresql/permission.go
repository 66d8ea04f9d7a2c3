package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/permission"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/database"
)

const pgErrUniqueViolation = "23505"

type permissionRepository struct {
	db *database.DB
}

func NewPermissionRepository(db *database.DB) permission.Repository {
	return &permissionRepository{db: db}
}

// ListAll implements permission.Repository.
func (r *permissionRepository) ListAll(ctx context.Context) ([]permission.Grant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, role, permission, is_system, created_at
		FROM role_permissions
		ORDER BY role, permission
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission grants: %w", err)
	}
	defer rows.Close()

	var grants []permission.Grant
	for rows.Next() {
		var g permission.Grant
		if err := rows.Scan(&g.ID, &g.Role, &g.Permission, &g.IsSystem, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate permission grants: %w", err)
	}

	return grants, nil
}

// Create implements permission.Repository.
func (r *permissionRepository) Create(ctx context.Context, grant permission.Grant) (permission.Grant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO role_permissions (role, permission, is_system)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, grant.Role, grant.Permission, grant.IsSystem).
		Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return permission.Grant{}, permission.ErrGrantExists
		}
		return permission.Grant{}, fmt.Errorf("failed to create permission grant: %w", err)
	}

	return grant, nil
}

// DeleteByPermission implements permission.Repository.
func (r *permissionRepository) DeleteByPermission(ctx context.Context, name string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM role_permissions WHERE permission = $1 AND is_system = false`

	tag, err := q.Exec(ctx, query, name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete permission grants: %w", err)
	}

	return tag.RowsAffected(), nil
}

// HasSystemGrant implements permission.Repository.
func (r *permissionRepository) HasSystemGrant(ctx context.Context, name string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM role_permissions WHERE permission = $1 AND is_system = true)`

	var exists bool
	if err := q.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check system grant: %w", err)
	}

	return exists, nil
}

// ReplaceMatrix implements permission.Repository. The whole non-system grant
// set is swapped in a single transaction so readers never observe a half
// applied matrix.
func (r *permissionRepository) ReplaceMatrix(ctx context.Context, matrix permission.Matrix) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE is_system = false`); err != nil {
			return fmt.Errorf("failed to clear permission matrix: %w", err)
		}

		insert := `
			INSERT INTO role_permissions (role, permission, is_system)
			VALUES ($1, $2, false)
			ON CONFLICT (role, permission) DO NOTHING
		`
		for role, perms := range matrix {
			for _, perm := range perms {
				if _, err := tx.Exec(ctx, insert, role, perm); err != nil {
					return fmt.Errorf("failed to insert grant %s/%s: %w", role, perm, err)
				}
			}
		}
		return nil
	})
}

// SeedDefaults implements permission.Repository.
func (r *permissionRepository) SeedDefaults(ctx context.Context, grants []permission.Grant) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO role_permissions (role, permission, is_system)
		VALUES ($1, $2, true)
		ON CONFLICT (role, permission) DO NOTHING
	`

	for _, g := range grants {
		if _, err := q.Exec(ctx, query, g.Role, g.Permission); err != nil {
			return fmt.Errorf("failed to seed grant %s/%s: %w", g.Role, g.Permission, err)
		}
	}

	return nil
}
