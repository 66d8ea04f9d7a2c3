package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/activitylog"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/validator"
)

type fakeRecordRepo struct {
	createFn           func(ctx context.Context, rec attendance.Record) (attendance.Record, error)
	getByIDFn          func(ctx context.Context, id string) (attendance.Record, error)
	updateFn           func(ctx context.Context, rec attendance.Record) error
	getOpenSessionFn   func(ctx context.Context, userID string) (*attendance.Record, error)
	listByUsersFn      func(ctx context.Context, userIDs []string, start, end time.Time) ([]attendance.Record, error)
	listByUserFn       func(ctx context.Context, userID string, start, end time.Time) ([]attendance.Record, error)
	getStaleSessionsFn func(ctx context.Context, cutoff time.Time) ([]attendance.Record, error)
}

func (f *fakeRecordRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	return f.createFn(ctx, rec)
}
func (f *fakeRecordRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeRecordRepo) Update(ctx context.Context, rec attendance.Record) error {
	return f.updateFn(ctx, rec)
}
func (f *fakeRecordRepo) GetOpenSession(ctx context.Context, userID string) (*attendance.Record, error) {
	return f.getOpenSessionFn(ctx, userID)
}
func (f *fakeRecordRepo) ListByUsersAndWindow(ctx context.Context, userIDs []string, start, end time.Time) ([]attendance.Record, error) {
	return f.listByUsersFn(ctx, userIDs, start, end)
}
func (f *fakeRecordRepo) ListByUserAndWindow(ctx context.Context, userID string, start, end time.Time) ([]attendance.Record, error) {
	return f.listByUserFn(ctx, userID, start, end)
}
func (f *fakeRecordRepo) GetStaleOpenSessions(ctx context.Context, cutoff time.Time) ([]attendance.Record, error) {
	return f.getStaleSessionsFn(ctx, cutoff)
}

type fakeExceptionRepo struct {
	upsertBatchFn  func(ctx context.Context, exceptions []attendance.Exception) ([]attendance.Exception, error)
	getByIDFn      func(ctx context.Context, id string) (attendance.Exception, error)
	updateStatusFn func(ctx context.Context, id string, status attendance.ExceptionStatus) (attendance.Exception, error)
}

func (f *fakeExceptionRepo) UpsertBatch(ctx context.Context, exceptions []attendance.Exception) ([]attendance.Exception, error) {
	return f.upsertBatchFn(ctx, exceptions)
}
func (f *fakeExceptionRepo) GetByID(ctx context.Context, id string) (attendance.Exception, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeExceptionRepo) UpdateStatus(ctx context.Context, id string, status attendance.ExceptionStatus) (attendance.Exception, error) {
	return f.updateStatusFn(ctx, id, status)
}

type fakeUserRepo struct {
	listActiveFn func(ctx context.Context) ([]user.User, error)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (f *fakeUserRepo) GetByOAuth(ctx context.Context, provider, providerID string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (f *fakeUserRepo) ListActiveNonAdmins(ctx context.Context) ([]user.User, error) {
	return f.listActiveFn(ctx)
}

type fakeProjectRepo struct {
	getByIDFn     func(ctx context.Context, id string) (project.Project, error)
	listMembersFn func(ctx context.Context, projectID string) ([]user.User, error)
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeProjectRepo) ListMembers(ctx context.Context, projectID string) ([]user.User, error) {
	return f.listMembersFn(ctx, projectID)
}

type fakeActivityRepo struct {
	entries []activitylog.Entry
}

func (f *fakeActivityRepo) Append(ctx context.Context, entry activitylog.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}
func (f *fakeActivityRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]activitylog.Entry, error) {
	return f.entries, nil
}

// authedContext builds a context carrying a verified token, the way the
// jwtauth verifier middleware would.
func authedContext(t *testing.T, userID, role string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id": userID,
		"role":    role,
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func newTestService(recordRepo *fakeRecordRepo, exceptionRepo *fakeExceptionRepo, userRepo *fakeUserRepo, projectRepo *fakeProjectRepo, activityRepo *fakeActivityRepo) *AttendanceServiceImpl {
	svc := NewAttendanceService(nil, recordRepo, exceptionRepo, userRepo, projectRepo, activityRepo, testRules())
	return svc
}

func TestCheckIn(t *testing.T) {
	ctx := authedContext(t, "u1", "member")

	activityRepo := &fakeActivityRepo{}
	recordRepo := &fakeRecordRepo{
		getOpenSessionFn: func(ctx context.Context, userID string) (*attendance.Record, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
			rec.ID = "rec-1"
			return rec, nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, nil, activityRepo)
	svc.now = func() time.Time { return mustTime(t, "2024-01-02T09:05:00Z") }

	resp, err := svc.CheckIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, "u1", resp.UserID)
	assert.Nil(t, resp.CheckOutTime)

	require.Len(t, activityRepo.entries, 1)
	assert.Equal(t, activitylog.ActionAttendanceCheckIn, activityRepo.entries[0].Action)
}

func TestCheckIn_AlreadyOpen(t *testing.T) {
	ctx := authedContext(t, "u1", "member")

	open := attendance.Record{ID: "rec-1", UserID: "u1"}
	recordRepo := &fakeRecordRepo{
		getOpenSessionFn: func(ctx context.Context, userID string) (*attendance.Record, error) {
			return &open, nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, nil, &fakeActivityRepo{})

	_, err := svc.CheckIn(ctx)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckOut(t *testing.T) {
	ctx := authedContext(t, "u1", "member")

	open := attendance.Record{
		ID:          "rec-1",
		UserID:      "u1",
		CheckInTime: mustTime(t, "2024-01-02T09:00:00Z"),
	}

	var updated attendance.Record
	recordRepo := &fakeRecordRepo{
		getOpenSessionFn: func(ctx context.Context, userID string) (*attendance.Record, error) {
			return &open, nil
		},
		updateFn: func(ctx context.Context, rec attendance.Record) error {
			updated = rec
			return nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, nil, &fakeActivityRepo{})
	svc.now = func() time.Time { return mustTime(t, "2024-01-02T17:30:00Z") }

	resp, err := svc.CheckOut(ctx)
	require.NoError(t, err)
	require.NotNil(t, resp.TotalHours)
	assert.Equal(t, 8.5, *resp.TotalHours)
	require.NotNil(t, updated.CheckOutTime)
	assert.Equal(t, mustTime(t, "2024-01-02T17:30:00Z"), *updated.CheckOutTime)
}

func TestCheckOut_NotCheckedIn(t *testing.T) {
	ctx := authedContext(t, "u1", "member")

	recordRepo := &fakeRecordRepo{
		getOpenSessionFn: func(ctx context.Context, userID string) (*attendance.Record, error) {
			return nil, nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, nil, &fakeActivityRepo{})

	_, err := svc.CheckOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestAdjust_CheckOutOnlyPreservesCheckIn(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")

	stored := attendance.Record{
		ID:           "rec-1",
		UserID:       "u1",
		CheckInTime:  mustTime(t, "2024-01-02T09:00:00Z"),
		AutoCheckout: true,
	}

	var updated attendance.Record
	recordRepo := &fakeRecordRepo{
		getByIDFn: func(ctx context.Context, id string) (attendance.Record, error) {
			return stored, nil
		},
		updateFn: func(ctx context.Context, rec attendance.Record) error {
			updated = rec
			return nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, nil, &fakeActivityRepo{})

	checkOut := "2024-01-02T17:30:00Z"
	resp, err := svc.Adjust(ctx, attendance.AdjustRequest{
		AttendanceID:     "rec-1",
		CheckOutTime:     &checkOut,
		AdjustmentReason: "forgot to check out",
	})
	require.NoError(t, err)

	// Check-in untouched, hours recomputed, auto-checkout flag cleared.
	assert.Equal(t, mustTime(t, "2024-01-02T09:00:00Z"), updated.CheckInTime)
	require.NotNil(t, updated.TotalHours)
	assert.Equal(t, 8.5, *updated.TotalHours)
	assert.False(t, updated.AutoCheckout)
	require.NotNil(t, updated.AdjustedBy)
	assert.Equal(t, "mgr-1", *updated.AdjustedBy)
	require.NotNil(t, resp.AdjustmentReason)
	assert.Equal(t, "forgot to check out", *resp.AdjustmentReason)
}

func TestAdjust_CheckOutBeforeCheckIn(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")

	recordRepo := &fakeRecordRepo{
		getByIDFn: func(ctx context.Context, id string) (attendance.Record, error) {
			return attendance.Record{
				ID:          "rec-1",
				UserID:      "u1",
				CheckInTime: mustTime(t, "2024-01-02T09:00:00Z"),
			}, nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, nil, &fakeActivityRepo{})

	checkOut := "2024-01-02T08:00:00Z"
	_, err := svc.Adjust(ctx, attendance.AdjustRequest{
		AttendanceID:     "rec-1",
		CheckOutTime:     &checkOut,
		AdjustmentReason: "oops",
	})
	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeCheckIn)
}

func TestAdjust_RequiresReason(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")
	svc := newTestService(&fakeRecordRepo{}, nil, nil, nil, &fakeActivityRepo{})

	checkOut := "2024-01-02T17:00:00Z"
	_, err := svc.Adjust(ctx, attendance.AdjustRequest{
		AttendanceID: "rec-1",
		CheckOutTime: &checkOut,
	})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Contains(t, validationErrs.ToMap(), "adjustment_reason")
}

// Adjustments are last write wins. Two managers editing the same record do
// not conflict; the second write simply replaces the first.
func TestAdjust_LastWriteWins(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")

	stored := attendance.Record{
		ID:          "rec-1",
		UserID:      "u1",
		CheckInTime: mustTime(t, "2024-01-02T09:00:00Z"),
	}

	recordRepo := &fakeRecordRepo{
		getByIDFn: func(ctx context.Context, id string) (attendance.Record, error) {
			return stored, nil
		},
		updateFn: func(ctx context.Context, rec attendance.Record) error {
			stored = rec
			return nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, nil, &fakeActivityRepo{})

	first := "2024-01-02T17:00:00Z"
	_, err := svc.Adjust(ctx, attendance.AdjustRequest{
		AttendanceID:     "rec-1",
		CheckOutTime:     &first,
		AdjustmentReason: "first correction",
	})
	require.NoError(t, err)

	second := "2024-01-02T18:00:00Z"
	_, err = svc.Adjust(ctx, attendance.AdjustRequest{
		AttendanceID:     "rec-1",
		CheckOutTime:     &second,
		AdjustmentReason: "second correction",
	})
	require.NoError(t, err)

	require.NotNil(t, stored.TotalHours)
	assert.Equal(t, 9.0, *stored.TotalHours)
	assert.Equal(t, "second correction", *stored.AdjustmentReason)
}

func TestExceptionReport_PreservesWorkflowStatus(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")

	userRepo := &fakeUserRepo{
		listActiveFn: func(ctx context.Context) ([]user.User, error) {
			return []user.User{{ID: "u1", FullName: "Ada"}}, nil
		},
	}
	recordRepo := &fakeRecordRepo{
		listByUsersFn: func(ctx context.Context, userIDs []string, start, end time.Time) ([]attendance.Record, error) {
			return []attendance.Record{record(t, "u1", "2024-01-02T09:30:00Z", 8)}, nil
		},
	}
	// Storage already holds this row as acknowledged from an earlier run.
	exceptionRepo := &fakeExceptionRepo{
		upsertBatchFn: func(ctx context.Context, exceptions []attendance.Exception) ([]attendance.Exception, error) {
			persisted := make([]attendance.Exception, 0, len(exceptions))
			for i, exc := range exceptions {
				exc.ID = "exc-" + string(rune('a'+i))
				exc.Status = attendance.ExceptionStatusAcknowledged
				persisted = append(persisted, exc)
			}
			return persisted, nil
		},
	}

	svc := newTestService(recordRepo, exceptionRepo, userRepo, nil, &fakeActivityRepo{})
	svc.now = func() time.Time { return mustTime(t, "2024-01-02T18:00:00Z") }

	report, err := svc.ExceptionReport(ctx, attendance.ExceptionFilter{
		StartDate: "2024-01-02",
		EndDate:   "2024-01-02",
	})
	require.NoError(t, err)

	require.Len(t, report.Exceptions, 1)
	assert.NotEmpty(t, report.Exceptions[0].ID)
	assert.Equal(t, string(attendance.ExceptionStatusAcknowledged), report.Exceptions[0].Status)
	assert.Equal(t, 1, report.Counts.Late)
}

func TestExceptionReport_TypeFilterNarrowsListNotCounts(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")

	userRepo := &fakeUserRepo{
		listActiveFn: func(ctx context.Context) ([]user.User, error) {
			return []user.User{{ID: "u1", FullName: "Ada"}}, nil
		},
	}
	recordRepo := &fakeRecordRepo{
		listByUsersFn: func(ctx context.Context, userIDs []string, start, end time.Time) ([]attendance.Record, error) {
			return []attendance.Record{record(t, "u1", "2024-01-02T09:30:00Z", 8)}, nil
		},
	}
	exceptionRepo := &fakeExceptionRepo{
		upsertBatchFn: func(ctx context.Context, exceptions []attendance.Exception) ([]attendance.Exception, error) {
			return exceptions, nil
		},
	}

	svc := newTestService(recordRepo, exceptionRepo, userRepo, nil, &fakeActivityRepo{})
	svc.now = func() time.Time { return mustTime(t, "2024-01-04T12:00:00Z") }

	absentType := "absent"
	report, err := svc.ExceptionReport(ctx, attendance.ExceptionFilter{
		StartDate: "2024-01-02",
		EndDate:   "2024-01-03",
		Type:      &absentType,
	})
	require.NoError(t, err)

	// The list holds only the absent finding for Jan 3; counts still see
	// the late check-in.
	require.Len(t, report.Exceptions, 1)
	assert.Equal(t, "absent", report.Exceptions[0].Type)
	assert.Equal(t, 1, report.Counts.Absent)
	assert.Equal(t, 1, report.Counts.Late)
}

func TestUpdateExceptionStatus_InvalidStatus(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")
	svc := newTestService(&fakeRecordRepo{}, &fakeExceptionRepo{}, nil, nil, &fakeActivityRepo{})

	_, err := svc.UpdateExceptionStatus(ctx, attendance.UpdateExceptionStatusRequest{
		ID:     "exc-1",
		Status: "done",
	})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Contains(t, validationErrs.ToMap(), "status")
}

func TestTeamAnalytics_ProjectScope(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")

	projectRepo := &fakeProjectRepo{
		getByIDFn: func(ctx context.Context, id string) (project.Project, error) {
			return project.Project{ID: id, Name: "Apollo"}, nil
		},
		listMembersFn: func(ctx context.Context, projectID string) ([]user.User, error) {
			return []user.User{{ID: "u1", FullName: "Ada"}}, nil
		},
	}
	recordRepo := &fakeRecordRepo{
		listByUsersFn: func(ctx context.Context, userIDs []string, start, end time.Time) ([]attendance.Record, error) {
			assert.Equal(t, []string{"u1"}, userIDs)
			return nil, nil
		},
	}

	svc := newTestService(recordRepo, nil, nil, projectRepo, &fakeActivityRepo{})
	svc.now = func() time.Time { return mustTime(t, "2024-01-07T12:00:00Z") }

	projectID := "p1"
	resp, err := svc.TeamAnalytics(ctx, attendance.TeamAnalyticsRequest{ProjectID: &projectID})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Analytics.TotalMembers)
	// Default window is seven days.
	assert.Len(t, resp.Analytics.DailyStats, 7)
}

func TestTeamAnalytics_UnknownProject(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")

	projectRepo := &fakeProjectRepo{
		getByIDFn: func(ctx context.Context, id string) (project.Project, error) {
			return project.Project{}, project.ErrProjectNotFound
		},
	}

	svc := newTestService(&fakeRecordRepo{}, nil, nil, projectRepo, &fakeActivityRepo{})

	projectID := "missing"
	_, err := svc.TeamAnalytics(ctx, attendance.TeamAnalyticsRequest{ProjectID: &projectID})
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestTeamAnalytics_WindowBounds(t *testing.T) {
	ctx := authedContext(t, "mgr-1", "manager")
	svc := newTestService(&fakeRecordRepo{}, nil, &fakeUserRepo{}, nil, &fakeActivityRepo{})

	_, err := svc.TeamAnalytics(ctx, attendance.TeamAnalyticsRequest{Days: 91})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Contains(t, validationErrs.ToMap(), "days")
}
