package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
)

type fakeAttendanceService struct {
	checkInFn         func(ctx context.Context) (attendance.RecordResponse, error)
	checkOutFn        func(ctx context.Context) (attendance.RecordResponse, error)
	myAttendanceFn    func(ctx context.Context, filter attendance.MyAttendanceFilter) ([]attendance.RecordResponse, error)
	adjustFn          func(ctx context.Context, req attendance.AdjustRequest) (attendance.RecordResponse, error)
	exceptionReportFn func(ctx context.Context, filter attendance.ExceptionFilter) (attendance.ExceptionReport, error)
	updateStatusFn    func(ctx context.Context, req attendance.UpdateExceptionStatusRequest) (attendance.ExceptionResponse, error)
	teamAnalyticsFn   func(ctx context.Context, req attendance.TeamAnalyticsRequest) (attendance.TeamAnalyticsResponse, error)
}

func (f *fakeAttendanceService) CheckIn(ctx context.Context) (attendance.RecordResponse, error) {
	return f.checkInFn(ctx)
}
func (f *fakeAttendanceService) CheckOut(ctx context.Context) (attendance.RecordResponse, error) {
	return f.checkOutFn(ctx)
}
func (f *fakeAttendanceService) MyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) ([]attendance.RecordResponse, error) {
	return f.myAttendanceFn(ctx, filter)
}
func (f *fakeAttendanceService) Adjust(ctx context.Context, req attendance.AdjustRequest) (attendance.RecordResponse, error) {
	return f.adjustFn(ctx, req)
}
func (f *fakeAttendanceService) ExceptionReport(ctx context.Context, filter attendance.ExceptionFilter) (attendance.ExceptionReport, error) {
	return f.exceptionReportFn(ctx, filter)
}
func (f *fakeAttendanceService) UpdateExceptionStatus(ctx context.Context, req attendance.UpdateExceptionStatusRequest) (attendance.ExceptionResponse, error) {
	return f.updateStatusFn(ctx, req)
}
func (f *fakeAttendanceService) TeamAnalytics(ctx context.Context, req attendance.TeamAnalyticsRequest) (attendance.TeamAnalyticsResponse, error) {
	return f.teamAnalyticsFn(ctx, req)
}

func attendanceTestRouter(svc attendance.Service) *chi.Mux {
	handler := NewAttendanceHandler(svc)
	r := chi.NewRouter()
	r.Post("/attendance/check-in", handler.CheckIn)
	r.Get("/attendance/my", handler.GetMyAttendance)
	r.Get("/attendance/exceptions", handler.ExceptionReport)
	r.Patch("/attendance/exceptions/{id}", handler.UpdateExceptionStatus)
	r.Post("/attendance/adjust", handler.Adjust)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCheckInHandler(t *testing.T) {
	svc := &fakeAttendanceService{
		checkInFn: func(ctx context.Context) (attendance.RecordResponse, error) {
			return attendance.RecordResponse{ID: "rec-1", UserID: "u1"}, nil
		},
	}
	router := attendanceTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/attendance/check-in", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var record attendance.RecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, "rec-1", record.ID)
}

func TestCheckInHandler_Conflict(t *testing.T) {
	svc := &fakeAttendanceService{
		checkInFn: func(ctx context.Context) (attendance.RecordResponse, error) {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		},
	}
	router := attendanceTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/attendance/check-in", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestMyAttendanceHandler_PassesFilter(t *testing.T) {
	var captured attendance.MyAttendanceFilter
	svc := &fakeAttendanceService{
		myAttendanceFn: func(ctx context.Context, filter attendance.MyAttendanceFilter) ([]attendance.RecordResponse, error) {
			captured = filter
			return []attendance.RecordResponse{}, nil
		},
	}
	router := attendanceTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/attendance/my?start_date=2024-01-01&end_date=2024-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured.StartDate)
	assert.Equal(t, "2024-01-01", *captured.StartDate)
	require.NotNil(t, captured.EndDate)
	assert.Equal(t, "2024-01-31", *captured.EndDate)
}

func TestAdjustHandler(t *testing.T) {
	var captured attendance.AdjustRequest
	svc := &fakeAttendanceService{
		adjustFn: func(ctx context.Context, req attendance.AdjustRequest) (attendance.RecordResponse, error) {
			captured = req
			return attendance.RecordResponse{ID: req.AttendanceID}, nil
		},
	}
	router := attendanceTestRouter(svc)

	body, _ := json.Marshal(map[string]string{
		"attendance_id":     "rec-42",
		"check_out_time":    "2024-01-02T17:00:00Z",
		"adjustment_reason": "forgot to check out",
	})
	req := httptest.NewRequest(http.MethodPost, "/attendance/adjust", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rec-42", captured.AttendanceID)
	assert.Equal(t, "forgot to check out", captured.AdjustmentReason)
}

func TestAdjustHandler_NotFound(t *testing.T) {
	svc := &fakeAttendanceService{
		adjustFn: func(ctx context.Context, req attendance.AdjustRequest) (attendance.RecordResponse, error) {
			return attendance.RecordResponse{}, attendance.ErrRecordNotFound
		},
	}
	router := attendanceTestRouter(svc)

	body, _ := json.Marshal(map[string]string{
		"attendance_id":     "missing",
		"check_out_time":    "2024-01-02T17:00:00Z",
		"adjustment_reason": "fix",
	})
	req := httptest.NewRequest(http.MethodPost, "/attendance/adjust", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdjustHandler_ValidationError(t *testing.T) {
	svc := &fakeAttendanceService{
		adjustFn: func(ctx context.Context, req attendance.AdjustRequest) (attendance.RecordResponse, error) {
			return attendance.RecordResponse{}, req.Validate()
		},
	}
	router := attendanceTestRouter(svc)

	body, _ := json.Marshal(map[string]string{"attendance_id": "rec-1"})
	req := httptest.NewRequest(http.MethodPost, "/attendance/adjust", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "adjustment_reason")
}

func TestUpdateExceptionStatusHandler(t *testing.T) {
	var captured attendance.UpdateExceptionStatusRequest
	svc := &fakeAttendanceService{
		updateStatusFn: func(ctx context.Context, req attendance.UpdateExceptionStatusRequest) (attendance.ExceptionResponse, error) {
			captured = req
			return attendance.ExceptionResponse{ID: req.ID, Status: req.Status}, nil
		},
	}
	router := attendanceTestRouter(svc)

	body, _ := json.Marshal(map[string]string{"status": "acknowledged"})
	req := httptest.NewRequest(http.MethodPatch, "/attendance/exceptions/exc-7", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "exc-7", captured.ID)
	assert.Equal(t, "acknowledged", captured.Status)
}

func TestExceptionReportHandler(t *testing.T) {
	svc := &fakeAttendanceService{
		exceptionReportFn: func(ctx context.Context, filter attendance.ExceptionFilter) (attendance.ExceptionReport, error) {
			assert.Equal(t, "2024-01-01", filter.StartDate)
			assert.Equal(t, "2024-01-07", filter.EndDate)
			require.NotNil(t, filter.Type)
			assert.Equal(t, "late", *filter.Type)
			return attendance.ExceptionReport{
				Exceptions: []attendance.ExceptionResponse{},
				Counts:     attendance.ExceptionCounts{Late: 2},
			}, nil
		},
	}
	router := attendanceTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/attendance/exceptions?start_date=2024-01-01&end_date=2024-01-07&type=late", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var report attendance.ExceptionReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 2, report.Counts.Late)
}
