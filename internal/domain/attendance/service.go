package attendance

import "context"

// Service defines business logic for attendance operations
type Service interface {
	// CheckIn opens a work session for the authenticated user
	CheckIn(ctx context.Context) (RecordResponse, error)

	// CheckOut closes the authenticated user's open session
	CheckOut(ctx context.Context) (RecordResponse, error)

	// MyAttendance lists the authenticated user's records
	MyAttendance(ctx context.Context, filter MyAttendanceFilter) ([]RecordResponse, error)

	// Adjust corrects a record (admin/manager). Preserved fields keep their
	// values; total hours are recomputed; auto_checkout is cleared.
	Adjust(ctx context.Context, req AdjustRequest) (RecordResponse, error)

	// ExceptionReport detects and persists exceptions over a window
	ExceptionReport(ctx context.Context, filter ExceptionFilter) (ExceptionReport, error)

	// UpdateExceptionStatus acknowledges or resolves an exception
	UpdateExceptionStatus(ctx context.Context, req UpdateExceptionStatusRequest) (ExceptionResponse, error)

	// TeamAnalytics aggregates team-wide attendance statistics
	TeamAnalytics(ctx context.Context, req TeamAnalyticsRequest) (TeamAnalyticsResponse, error)
}
