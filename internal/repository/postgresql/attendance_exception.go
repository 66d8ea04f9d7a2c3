package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/database"
)

type attendanceExceptionRepository struct {
	db *database.DB
}

func NewAttendanceExceptionRepository(db *database.DB) attendance.ExceptionRepository {
	return &attendanceExceptionRepository{db: db}
}

// UpsertBatch implements attendance.ExceptionRepository. Rows are keyed on
// (user_id, date, type); re-detection refreshes details but keeps the stored
// workflow status.
func (r *attendanceExceptionRepository) UpsertBatch(ctx context.Context, exceptions []attendance.Exception) ([]attendance.Exception, error) {
	if len(exceptions) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_exceptions (user_id, date, type, details, status)
		VALUES ($1, $2, $3, $4, 'new')
		ON CONFLICT (user_id, date, type)
		DO UPDATE SET details = EXCLUDED.details, updated_at = NOW()
		RETURNING id, user_id, date, type, details, status, created_at, updated_at
	`

	result := make([]attendance.Exception, 0, len(exceptions))
	for _, exc := range exceptions {
		var persisted attendance.Exception
		err := q.QueryRow(ctx, query, exc.UserID, exc.Date, exc.Type, exc.Details).Scan(
			&persisted.ID, &persisted.UserID, &persisted.Date, &persisted.Type,
			&persisted.Details, &persisted.Status, &persisted.CreatedAt, &persisted.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert attendance exception: %w", err)
		}
		persisted.UserName = exc.UserName
		result = append(result, persisted)
	}

	return result, nil
}

// GetByID implements attendance.ExceptionRepository.
func (r *attendanceExceptionRepository) GetByID(ctx context.Context, id string) (attendance.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.user_id, e.date, e.type, e.details, e.status, e.created_at, e.updated_at,
			   u.full_name AS user_name
		FROM attendance_exceptions e
		LEFT JOIN users u ON u.id = e.user_id
		WHERE e.id = $1
	`

	var exc attendance.Exception
	err := q.QueryRow(ctx, query, id).Scan(
		&exc.ID, &exc.UserID, &exc.Date, &exc.Type, &exc.Details, &exc.Status,
		&exc.CreatedAt, &exc.UpdatedAt, &exc.UserName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Exception{}, attendance.ErrExceptionNotFound
		}
		return attendance.Exception{}, fmt.Errorf("failed to get attendance exception by ID: %w", err)
	}

	return exc, nil
}

// UpdateStatus implements attendance.ExceptionRepository.
func (r *attendanceExceptionRepository) UpdateStatus(ctx context.Context, id string, status attendance.ExceptionStatus) (attendance.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_exceptions
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, user_id, date, type, details, status, created_at, updated_at
	`

	var exc attendance.Exception
	err := q.QueryRow(ctx, query, status, id).Scan(
		&exc.ID, &exc.UserID, &exc.Date, &exc.Type, &exc.Details, &exc.Status,
		&exc.CreatedAt, &exc.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Exception{}, attendance.ErrExceptionNotFound
		}
		return attendance.Exception{}, fmt.Errorf("failed to update exception status: %w", err)
	}

	return exc, nil
}
