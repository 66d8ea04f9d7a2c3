package activitylog

import "context"

type Repository interface {
	// Append writes one audit entry. Failures should be logged by callers,
	// not allowed to fail the mutation that produced the entry.
	Append(ctx context.Context, entry Entry) error

	// ListByEntity returns entries for one entity, newest first
	ListByEntity(ctx context.Context, entityType string, entityID string, limit int) ([]Entry, error)
}
