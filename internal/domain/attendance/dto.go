package attendance

import (
	"strings"
	"time"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/validator"
)

// ========================================
// RECORD DTOs
// ========================================

type RecordResponse struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	UserName         *string  `json:"user_name,omitempty"`
	CheckInTime      string   `json:"check_in_time"`
	CheckOutTime     *string  `json:"check_out_time,omitempty"`
	TotalHours       *float64 `json:"total_hours,omitempty"`
	AutoCheckout     bool     `json:"auto_checkout"`
	AdjustedBy       *string  `json:"adjusted_by,omitempty"`
	AdjustmentReason *string  `json:"adjustment_reason,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// AdjustRequest corrects a record after the fact (admin/manager only).
// Omitted timestamps keep their stored values; total hours are recomputed
// from whatever the record ends up holding.
type AdjustRequest struct {
	AttendanceID     string  `json:"attendance_id"`
	CheckInTime      *string `json:"check_in_time,omitempty"`  // RFC3339
	CheckOutTime     *string `json:"check_out_time,omitempty"` // RFC3339
	AdjustmentReason string  `json:"adjustment_reason"`
}

func (r *AdjustRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}

	if validator.IsEmpty(r.AdjustmentReason) {
		errs = append(errs, validator.ValidationError{
			Field:   "adjustment_reason",
			Message: "adjustment_reason is required",
		})
	}

	if r.CheckInTime == nil && r.CheckOutTime == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_time",
			Message: "at least one of check_in_time or check_out_time is required",
		})
	}

	if r.CheckInTime != nil {
		if _, valid := validator.IsValidDateTime(*r.CheckInTime); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in_time",
				Message: "check_in_time must be an RFC3339 timestamp",
			})
		}
	}

	if r.CheckOutTime != nil {
		if _, valid := validator.IsValidDateTime(*r.CheckOutTime); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_time",
				Message: "check_out_time must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// EXCEPTION DTOs
// ========================================

type ExceptionFilter struct {
	StartDate string  `json:"start_date"` // YYYY-MM-DD
	EndDate   string  `json:"end_date"`   // YYYY-MM-DD
	Type      *string `json:"type,omitempty"`
}

func (f *ExceptionFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startValid := validator.IsValidDate(f.StartDate)
	if f.StartDate == "" || !startValid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endValid := validator.IsValidDate(f.EndDate)
	if f.EndDate == "" || !endValid {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startValid && endValid && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if f.Type != nil && *f.Type != "" {
		if !validator.IsInSlice(strings.ToLower(*f.Type), ValidExceptionTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "type",
				Message: "type must be one of: absent, late, forgot_checkout, pattern",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Window returns the parsed inclusive date window. Call Validate first.
func (f *ExceptionFilter) Window() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(f.StartDate)
	end, _ := validator.IsValidDate(f.EndDate)
	return start, end
}

type ExceptionResponse struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	UserName *string `json:"user_name,omitempty"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Details  string  `json:"details"`
	Status   string  `json:"status"`
}

type ExceptionCounts struct {
	Absent         int `json:"absent"`
	Late           int `json:"late"`
	ForgotCheckout int `json:"forgot_checkout"`
	Pattern        int `json:"pattern"`
}

type ExceptionReport struct {
	Exceptions []ExceptionResponse `json:"exceptions"`
	Counts     ExceptionCounts     `json:"counts"`
}

type UpdateExceptionStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateExceptionStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "exception id is required",
		})
	}

	if !validator.IsInSlice(strings.ToLower(r.Status), ValidExceptionStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: new, acknowledged, resolved",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// TEAM ANALYTICS DTOs
// ========================================

type TeamAnalyticsRequest struct {
	Days      int     `json:"days"`
	ProjectID *string `json:"project_id,omitempty"`
}

func (r *TeamAnalyticsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Days == 0 {
		r.Days = 7 // Default window
	}
	if r.Days < 1 || r.Days > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be between 1 and 90",
		})
	}

	if r.ProjectID != nil && validator.IsEmpty(*r.ProjectID) {
		errs = append(errs, validator.ValidationError{
			Field:   "project_id",
			Message: "project_id must not be blank",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DailyStat struct {
	Date         string  `json:"date"`
	PresentCount int     `json:"present_count"`
	OnTimeCount  int     `json:"on_time_count"`
	LateCount    int     `json:"late_count"`
	TotalHours   float64 `json:"total_hours"`
}

type UserStat struct {
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name"`
	DaysPresent    int     `json:"days_present"`
	DaysAbsent     int     `json:"days_absent"`
	DaysLate       int     `json:"days_late"`
	TotalHours     float64 `json:"total_hours"`
	AttendanceRate float64 `json:"attendance_rate"`
	OnTimeRate     float64 `json:"on_time_rate"`
}

type TeamAnalytics struct {
	TotalMembers   int         `json:"total_members"`
	ActiveMembers  int         `json:"active_members"`
	TotalHours     float64     `json:"total_hours"`
	AttendanceRate float64     `json:"attendance_rate"`
	OnTimeRate     float64     `json:"on_time_rate"`
	DailyStats     []DailyStat `json:"daily_stats"`
	UserStats      []UserStat  `json:"user_stats"`
}

type TeamAnalyticsResponse struct {
	Analytics TeamAnalytics `json:"analytics"`
}
