package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/config"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/activitylog"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
)

type AttendanceJobs struct {
	recordRepo   attendance.RecordRepository
	activityRepo activitylog.Repository
	rules        config.AttendanceRules

	now func() time.Time
}

func NewAttendanceJobs(
	recordRepo attendance.RecordRepository,
	activityRepo activitylog.Repository,
	rules config.AttendanceRules,
) *AttendanceJobs {
	return &AttendanceJobs{
		recordRepo:   recordRepo,
		activityRepo: activityRepo,
		rules:        rules,
		now:          time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", 1*time.Hour, j.AutoCloseStaleSessions)
}

// AutoCloseStaleSessions closes sessions whose check-in is older than the
// daily cap plus the configured grace. The session is closed at
// check-in + cap, total hours are set to the cap and the record is flagged
// so the exception detector reports a forgotten checkout.
func (j *AttendanceJobs) AutoCloseStaleSessions(ctx context.Context) error {
	cutoff := j.now().UTC().
		Add(-time.Duration(j.rules.MaxDailyHours * float64(time.Hour))).
		Add(-j.rules.AutoCheckoutGrace)

	stale, err := j.recordRepo.GetStaleOpenSessions(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to get stale sessions: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	slog.Info("Cron: closing stale attendance sessions", "count", len(stale))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, session := range stale {
		session := session
		g.Go(func() error {
			checkOut := session.CheckInTime.Add(time.Duration(j.rules.MaxDailyHours * float64(time.Hour)))
			hours := j.rules.MaxDailyHours

			session.CheckOutTime = &checkOut
			session.TotalHours = &hours
			session.AutoCheckout = true

			if err := j.recordRepo.Update(gctx, session); err != nil {
				return fmt.Errorf("failed to auto-close session %s: %w", session.ID, err)
			}

			return j.activityRepo.Append(gctx, activitylog.Entry{
				Action:      activitylog.ActionAttendanceAutoClose,
				EntityType:  "attendance_record",
				EntityID:    session.ID,
				Description: fmt.Sprintf("session auto-closed after %.0f hours", hours),
				UserID:      session.UserID,
			})
		})
	}

	return g.Wait()
}
