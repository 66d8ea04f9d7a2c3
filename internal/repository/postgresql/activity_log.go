package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/activitylog"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/database"
)

type activityLogRepository struct {
	db *database.DB
}

func NewActivityLogRepository(db *database.DB) activitylog.Repository {
	return &activityLogRepository{db: db}
}

// Append implements activitylog.Repository.
func (r *activityLogRepository) Append(ctx context.Context, entry activitylog.Entry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO activity_logs (id, action, entity_type, entity_id, description, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query,
		entry.ID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Description,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity log entry: %w", err)
	}

	return nil
}

// ListByEntity implements activitylog.Repository.
func (r *activityLogRepository) ListByEntity(ctx context.Context, entityType string, entityID string, limit int) ([]activitylog.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, action, entity_type, entity_id, description, user_id, created_at
		FROM activity_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := q.Query(ctx, query, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log entries: %w", err)
	}
	defer rows.Close()

	var entries []activitylog.Entry
	for rows.Next() {
		var e activitylog.Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity log rows: %w", err)
	}

	return entries, nil
}
