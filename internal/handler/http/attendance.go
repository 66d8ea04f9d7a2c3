package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
	ExceptionReport(w http.ResponseWriter, r *http.Request)
	UpdateExceptionStatus(w http.ResponseWriter, r *http.Request)
	TeamAnalytics(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
}

func NewAttendanceHandler(attendanceService attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	record, err := h.attendanceService.CheckIn(r.Context())
	if err != nil {
		slog.Error("CheckIn service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", record)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	record, err := h.attendanceService.CheckOut(r.Context())
	if err != nil {
		slog.Error("CheckOut service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", record)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	var filter attendance.MyAttendanceFilter

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	records, err := h.attendanceService.MyAttendance(r.Context(), filter)
	if err != nil {
		slog.Error("GetMyAttendance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// Adjust implements AttendanceHandler.
func (h *attendanceHandlerImpl) Adjust(w http.ResponseWriter, r *http.Request) {
	var req attendance.AdjustRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Adjust decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	record, err := h.attendanceService.Adjust(r.Context(), req)
	if err != nil {
		slog.Error("Adjust service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record adjusted", record)
}

// ExceptionReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExceptionReport(w http.ResponseWriter, r *http.Request) {
	filter := attendance.ExceptionFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if excType := r.URL.Query().Get("type"); excType != "" {
		filter.Type = &excType
	}

	report, err := h.attendanceService.ExceptionReport(r.Context(), filter)
	if err != nil {
		slog.Error("ExceptionReport service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// UpdateExceptionStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateExceptionStatus(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateExceptionStatusRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateExceptionStatus decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	exc, err := h.attendanceService.UpdateExceptionStatus(r.Context(), req)
	if err != nil {
		slog.Error("UpdateExceptionStatus service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exception status updated", exc)
}

// TeamAnalytics implements AttendanceHandler.
func (h *attendanceHandlerImpl) TeamAnalytics(w http.ResponseWriter, r *http.Request) {
	var req attendance.TeamAnalyticsRequest

	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			response.BadRequest(w, "days must be an integer", nil)
			return
		}
		req.Days = days
	}
	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		req.ProjectID = &projectID
	}

	analytics, err := h.attendanceService.TeamAnalytics(r.Context(), req)
	if err != nil {
		slog.Error("TeamAnalytics service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, analytics)
}
