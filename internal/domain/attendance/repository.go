package attendance

import (
	"context"
	"time"
)

// RecordRepository defines data access for attendance records.
type RecordRepository interface {
	// Create creates a new record at check-in
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id string) (Record, error)

	// Update overwrites a record. Last write wins; adjustments are not
	// coordinated between concurrent writers.
	Update(ctx context.Context, record Record) error

	// GetOpenSession returns the caller's record without a check-out, if any
	GetOpenSession(ctx context.Context, userID string) (*Record, error)

	// ListByUsersAndWindow returns records whose check-in falls inside the
	// inclusive [start, end] calendar window for the given users.
	ListByUsersAndWindow(ctx context.Context, userIDs []string, start, end time.Time) ([]Record, error)

	// ListByUserAndWindow is the single-user variant used by GET /attendance/my
	ListByUserAndWindow(ctx context.Context, userID string, start, end time.Time) ([]Record, error)

	// GetStaleOpenSessions returns open sessions whose check-in is older than
	// the cutoff, for the auto-checkout job.
	GetStaleOpenSessions(ctx context.Context, cutoff time.Time) ([]Record, error)
}

// ExceptionRepository persists detected exceptions so their workflow status
// survives re-detection.
type ExceptionRepository interface {
	// UpsertBatch inserts new exceptions and refreshes details of existing
	// ones, keyed on (user_id, date, type). Stored status is preserved.
	// Returns the persisted rows, IDs and statuses included.
	UpsertBatch(ctx context.Context, exceptions []Exception) ([]Exception, error)

	// GetByID retrieves one exception
	GetByID(ctx context.Context, id string) (Exception, error)

	// UpdateStatus moves an exception through its workflow
	UpdateStatus(ctx context.Context, id string, status ExceptionStatus) (Exception, error)
}
