package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRepository{db: db}
}

const recordColumns = `a.id, a.user_id, a.check_in_time, a.check_out_time, a.total_hours,
	a.auto_checkout, a.adjusted_by, a.adjustment_reason, a.created_at, a.updated_at`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.CheckInTime, &rec.CheckOutTime, &rec.TotalHours,
		&rec.AutoCheckout, &rec.AdjustedBy, &rec.AdjustmentReason, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.RecordRepository.
func (a *attendanceRepository) Create(ctx context.Context, newRecord attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if newRecord.ID == "" {
		newRecord.ID = uuid.New().String()
	}

	query := `
		INSERT INTO attendance_records (
			id, user_id, check_in_time, check_out_time, total_hours,
			auto_checkout, adjusted_by, adjustment_reason
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newRecord.ID,
		newRecord.UserID,
		newRecord.CheckInTime,
		newRecord.CheckOutTime,
		newRecord.TotalHours,
		newRecord.AutoCheckout,
		newRecord.AdjustedBy,
		newRecord.AdjustmentReason,
	).Scan(&newRecord.CreatedAt, &newRecord.UpdatedAt)

	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return newRecord, nil
}

// GetByID implements attendance.RecordRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `, u.full_name AS user_name
		FROM attendance_records a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`

	var rec attendance.Record
	err := q.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.UserID, &rec.CheckInTime, &rec.CheckOutTime, &rec.TotalHours,
		&rec.AutoCheckout, &rec.AdjustedBy, &rec.AdjustmentReason, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.UserName,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	return rec, nil
}

// Update implements attendance.RecordRepository. Last write wins: there is no
// version column, concurrent adjustments are not coordinated.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET check_in_time = $1,
			check_out_time = $2,
			total_hours = $3,
			auto_checkout = $4,
			adjusted_by = $5,
			adjustment_reason = $6,
			updated_at = NOW()
		WHERE id = $7
	`

	tag, err := q.Exec(ctx, query,
		record.CheckInTime,
		record.CheckOutTime,
		record.TotalHours,
		record.AutoCheckout,
		record.AdjustedBy,
		record.AdjustmentReason,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// GetOpenSession implements attendance.RecordRepository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, userID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records a
		WHERE a.user_id = $1
		  AND a.check_out_time IS NULL
		ORDER BY a.check_in_time DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No open session
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}

	return &rec, nil
}

// ListByUsersAndWindow implements attendance.RecordRepository.
func (a *attendanceRepository) ListByUsersAndWindow(ctx context.Context, userIDs []string, start, end time.Time) ([]attendance.Record, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, a.db)

	// end is the last included calendar day, so compare against end + 1 day
	query := `
		SELECT ` + recordColumns + `, u.full_name AS user_name
		FROM attendance_records a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.user_id = ANY($1)
		  AND a.check_in_time >= $2
		  AND a.check_in_time < $3
		ORDER BY a.check_in_time
	`

	rows, err := q.Query(ctx, query, userIDs, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.CheckInTime, &rec.CheckOutTime, &rec.TotalHours,
			&rec.AutoCheckout, &rec.AdjustedBy, &rec.AdjustmentReason, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}

	return records, nil
}

// ListByUserAndWindow implements attendance.RecordRepository.
func (a *attendanceRepository) ListByUserAndWindow(ctx context.Context, userID string, start, end time.Time) ([]attendance.Record, error) {
	return a.ListByUsersAndWindow(ctx, []string{userID}, start, end)
}

// GetStaleOpenSessions implements attendance.RecordRepository.
func (a *attendanceRepository) GetStaleOpenSessions(ctx context.Context, cutoff time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records a
		WHERE a.check_out_time IS NULL
		  AND a.check_in_time < $1
		ORDER BY a.check_in_time
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale open sessions: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stale session row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stale session rows: %w", err)
	}

	return records, nil
}
