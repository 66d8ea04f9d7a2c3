package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/config"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/activitylog"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	db            *database.DB
	recordRepo    attendance.RecordRepository
	exceptionRepo attendance.ExceptionRepository
	userRepo      user.UserRepository
	projectRepo   project.Repository
	activityRepo  activitylog.Repository
	rules         config.AttendanceRules

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

func NewAttendanceService(
	db *database.DB,
	recordRepo attendance.RecordRepository,
	exceptionRepo attendance.ExceptionRepository,
	userRepo user.UserRepository,
	projectRepo project.Repository,
	activityRepo activitylog.Repository,
	rules config.AttendanceRules,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		db:            db,
		recordRepo:    recordRepo,
		exceptionRepo: exceptionRepo,
		userRepo:      userRepo,
		projectRepo:   projectRepo,
		activityRepo:  activityRepo,
		rules:         rules,
		now:           time.Now,
	}
}

// callerID extracts the authenticated user's ID from the JWT claims.
func callerID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return userID, nil
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func toRecordResponse(rec attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		ID:               rec.ID,
		UserID:           rec.UserID,
		UserName:         rec.UserName,
		CheckInTime:      rec.CheckInTime.Format(time.RFC3339),
		CheckOutTime:     timePtrToString(rec.CheckOutTime),
		TotalHours:       rec.TotalHours,
		AutoCheckout:     rec.AutoCheckout,
		AdjustedBy:       rec.AdjustedBy,
		AdjustmentReason: rec.AdjustmentReason,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        rec.UpdatedAt.Format(time.RFC3339),
	}
}

func toExceptionResponse(exc attendance.Exception) attendance.ExceptionResponse {
	return attendance.ExceptionResponse{
		ID:       exc.ID,
		UserID:   exc.UserID,
		UserName: exc.UserName,
		Date:     exc.Date.Format("2006-01-02"),
		Type:     string(exc.Type),
		Details:  exc.Details,
		Status:   string(exc.Status),
	}
}

// CheckIn implements attendance.Service.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context) (attendance.RecordResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	open, err := s.recordRepo.GetOpenSession(ctx, userID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check open session: %w", err)
	}
	if open != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
	}

	rec, err := s.recordRepo.Create(ctx, attendance.Record{
		UserID:      userID,
		CheckInTime: s.now().UTC(),
	})
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	if err := s.activityRepo.Append(ctx, activitylog.Entry{
		Action:      activitylog.ActionAttendanceCheckIn,
		EntityType:  "attendance_record",
		EntityID:    rec.ID,
		Description: "checked in",
		UserID:      userID,
	}); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to record check-in activity: %w", err)
	}

	return toRecordResponse(rec), nil
}

// CheckOut implements attendance.Service.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context) (attendance.RecordResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	open, err := s.recordRepo.GetOpenSession(ctx, userID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check open session: %w", err)
	}
	if open == nil {
		return attendance.RecordResponse{}, attendance.ErrNotCheckedIn
	}

	checkOut := s.now().UTC()
	hours := SessionHours(open.CheckInTime, checkOut, s.rules)

	open.CheckOutTime = &checkOut
	open.TotalHours = &hours

	if err := s.recordRepo.Update(ctx, *open); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	if err := s.activityRepo.Append(ctx, activitylog.Entry{
		Action:      activitylog.ActionAttendanceCheckOut,
		EntityType:  "attendance_record",
		EntityID:    open.ID,
		Description: fmt.Sprintf("checked out after %.2f hours", hours),
		UserID:      userID,
	}); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to record check-out activity: %w", err)
	}

	return toRecordResponse(*open), nil
}

// MyAttendance implements attendance.Service. The window defaults to the
// last 30 days when the filter is empty.
func (s *AttendanceServiceImpl) MyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	end := dateOnly(s.now().UTC())
	start := end.AddDate(0, 0, -29)

	if filter.StartDate != nil && *filter.StartDate != "" {
		start, _ = time.Parse("2006-01-02", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		end, _ = time.Parse("2006-01-02", *filter.EndDate)
	}

	records, err := s.recordRepo.ListByUserAndWindow(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toRecordResponse(rec))
	}

	return responses, nil
}

// Adjust implements attendance.Service. Omitted timestamps keep their stored
// values. Total hours are recomputed from the resulting pair and the
// auto-checkout flag is cleared since a human has now vouched for the record.
func (s *AttendanceServiceImpl) Adjust(ctx context.Context, req attendance.AdjustRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	adjusterID, err := callerID(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.recordRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if req.CheckInTime != nil {
		checkIn, err := time.Parse(time.RFC3339, *req.CheckInTime)
		if err != nil {
			checkIn, err = time.Parse(time.RFC3339Nano, *req.CheckInTime)
			if err != nil {
				return attendance.RecordResponse{}, fmt.Errorf("failed to parse check_in_time: %w", err)
			}
		}
		rec.CheckInTime = checkIn.UTC()
	}

	if req.CheckOutTime != nil {
		checkOut, err := time.Parse(time.RFC3339, *req.CheckOutTime)
		if err != nil {
			checkOut, err = time.Parse(time.RFC3339Nano, *req.CheckOutTime)
			if err != nil {
				return attendance.RecordResponse{}, fmt.Errorf("failed to parse check_out_time: %w", err)
			}
		}
		utc := checkOut.UTC()
		rec.CheckOutTime = &utc
	}

	if rec.CheckOutTime != nil {
		if rec.CheckOutTime.Before(rec.CheckInTime) {
			return attendance.RecordResponse{}, attendance.ErrCheckOutBeforeCheckIn
		}
		hours := SessionHours(rec.CheckInTime, *rec.CheckOutTime, s.rules)
		rec.TotalHours = &hours
	} else {
		rec.TotalHours = nil
	}

	reason := strings.TrimSpace(req.AdjustmentReason)
	rec.AutoCheckout = false
	rec.AdjustedBy = &adjusterID
	rec.AdjustmentReason = &reason

	if err := s.recordRepo.Update(ctx, rec); err != nil {
		return attendance.RecordResponse{}, err
	}

	if err := s.activityRepo.Append(ctx, activitylog.Entry{
		Action:      activitylog.ActionAttendanceAdjust,
		EntityType:  "attendance_record",
		EntityID:    rec.ID,
		Description: fmt.Sprintf("adjusted record of user %s: %s", rec.UserID, reason),
		UserID:      adjusterID,
	}); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to record adjustment activity: %w", err)
	}

	return toRecordResponse(rec), nil
}

// ExceptionReport implements attendance.Service. Detection runs on every
// call and the findings are upserted so that workflow status set through
// UpdateExceptionStatus survives re-detection. The type filter narrows the
// returned list only; counts always cover the full window.
func (s *AttendanceServiceImpl) ExceptionReport(ctx context.Context, filter attendance.ExceptionFilter) (attendance.ExceptionReport, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ExceptionReport{}, err
	}
	start, end := filter.Window()

	members, err := s.userRepo.ListActiveNonAdmins(ctx)
	if err != nil {
		return attendance.ExceptionReport{}, fmt.Errorf("failed to list team members: %w", err)
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.ID)
	}

	records, err := s.recordRepo.ListByUsersAndWindow(ctx, userIDs, start, end)
	if err != nil {
		return attendance.ExceptionReport{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	findings := DetectExceptions(members, records, start, end, s.now().UTC(), s.rules)

	persisted, err := s.exceptionRepo.UpsertBatch(ctx, dedupeFindings(findings))
	if err != nil {
		return attendance.ExceptionReport{}, fmt.Errorf("failed to persist exceptions: %w", err)
	}

	// Findings keep per-record granularity in the report. IDs and workflow
	// status come from the persisted user-day rows.
	type rowKey struct {
		userID string
		date   string
		typ    attendance.ExceptionType
	}
	rows := make(map[rowKey]attendance.Exception, len(persisted))
	for _, p := range persisted {
		rows[rowKey{p.UserID, dayKey(p.Date), p.Type}] = p
	}

	report := attendance.ExceptionReport{
		Exceptions: make([]attendance.ExceptionResponse, 0, len(findings)),
		Counts:     CountExceptions(findings),
	}

	for _, f := range findings {
		if filter.Type != nil && *filter.Type != "" && string(f.Type) != strings.ToLower(*filter.Type) {
			continue
		}
		if row, ok := rows[rowKey{f.UserID, dayKey(f.Date), f.Type}]; ok {
			f.ID = row.ID
			f.Status = row.Status
		}
		report.Exceptions = append(report.Exceptions, toExceptionResponse(f))
	}

	return report, nil
}

// dedupeFindings collapses findings onto the persistence key
// (user_id, date, type). Late check-ins can repeat within a day in the
// report, but they share one stored row.
func dedupeFindings(findings []attendance.Exception) []attendance.Exception {
	type rowKey struct {
		userID string
		date   string
		typ    attendance.ExceptionType
	}
	seen := make(map[rowKey]bool, len(findings))
	deduped := make([]attendance.Exception, 0, len(findings))
	for _, f := range findings {
		key := rowKey{f.UserID, dayKey(f.Date), f.Type}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, f)
	}
	return deduped
}

// UpdateExceptionStatus implements attendance.Service.
func (s *AttendanceServiceImpl) UpdateExceptionStatus(ctx context.Context, req attendance.UpdateExceptionStatusRequest) (attendance.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ExceptionResponse{}, err
	}

	actorID, err := callerID(ctx)
	if err != nil {
		return attendance.ExceptionResponse{}, err
	}

	status := attendance.ExceptionStatus(strings.ToLower(req.Status))
	exc, err := s.exceptionRepo.UpdateStatus(ctx, req.ID, status)
	if err != nil {
		return attendance.ExceptionResponse{}, err
	}

	if err := s.activityRepo.Append(ctx, activitylog.Entry{
		Action:      activitylog.ActionExceptionStatusChange,
		EntityType:  "attendance_exception",
		EntityID:    exc.ID,
		Description: fmt.Sprintf("exception marked %s", status),
		UserID:      actorID,
	}); err != nil {
		return attendance.ExceptionResponse{}, fmt.Errorf("failed to record exception status activity: %w", err)
	}

	return toExceptionResponse(exc), nil
}

// TeamAnalytics implements attendance.Service. The window is the last N
// calendar days ending today. With a project_id the scope narrows to that
// project's active members, otherwise every active non-admin user counts.
func (s *AttendanceServiceImpl) TeamAnalytics(ctx context.Context, req attendance.TeamAnalyticsRequest) (attendance.TeamAnalyticsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TeamAnalyticsResponse{}, err
	}

	now := s.now().UTC()
	end := dateOnly(now)
	start := end.AddDate(0, 0, -(req.Days - 1))

	var (
		members []user.User
		err     error
	)
	if req.ProjectID != nil {
		if _, err = s.projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
			return attendance.TeamAnalyticsResponse{}, err
		}
		members, err = s.projectRepo.ListMembers(ctx, *req.ProjectID)
	} else {
		members, err = s.userRepo.ListActiveNonAdmins(ctx)
	}
	if err != nil {
		return attendance.TeamAnalyticsResponse{}, fmt.Errorf("failed to list team members: %w", err)
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.ID)
	}

	records, err := s.recordRepo.ListByUsersAndWindow(ctx, userIDs, start, end)
	if err != nil {
		return attendance.TeamAnalyticsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	return attendance.TeamAnalyticsResponse{
		Analytics: BuildTeamAnalytics(members, records, start, end, now, s.rules),
	}, nil
}
