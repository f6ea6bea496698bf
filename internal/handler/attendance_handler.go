package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Junior-NGOY/masomo-sub003/internal/dto"
	"github.com/Junior-NGOY/masomo-sub003/internal/middleware"
	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	"github.com/Junior-NGOY/masomo-sub003/internal/service"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
	"github.com/Junior-NGOY/masomo-sub003/pkg/response"
)

type attendanceSessionService interface {
	OpenSession(ctx context.Context, req service.OpenSessionRequest) (*models.ClassDailyAttendance, error)
	RecordStatus(ctx context.Context, req service.RecordStatusRequest) (*models.DailyAttendanceRecord, error)
	RecordBulk(ctx context.Context, req service.RecordBulkRequest) (*service.BulkRecordResult, error)
	CompleteSession(ctx context.Context, req service.CompleteSessionRequest) (*models.ClassDailyAttendance, error)
	GetSession(ctx context.Context, className, date string) (*models.ClassDailyAttendance, error)
	GetSessionByID(ctx context.Context, id string) (*models.ClassDailyAttendance, error)
	GetRecords(ctx context.Context, className, date string) ([]models.DailyAttendanceRecord, error)
}

type attendanceRollupService interface {
	MonthlyStats(ctx context.Context, className, month string) (*models.MonthlyAttendanceStats, bool, error)
}

type attendanceExportService interface {
	ResolveRange(className, startDate, endDate string) (service.ExportRange, error)
	Render(ctx context.Context, format models.ExportFormat, r service.ExportRange) (*service.RenderedExport, error)
}

// AttendanceHandler exposes the daily attendance session endpoints.
type AttendanceHandler struct {
	sessions attendanceSessionService
	rollup   attendanceRollupService
	exports  attendanceExportService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(sessions attendanceSessionService, rollup attendanceRollupService, exports attendanceExportService) *AttendanceHandler {
	return &AttendanceHandler{sessions: sessions, rollup: rollup, exports: exports}
}

// OpenSession godoc
// @Summary Open the daily attendance session of a class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.OpenSessionRequest true "Class and optional date"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/sessions [post]
func (h *AttendanceHandler) OpenSession(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	session, err := h.sessions.OpenSession(c.Request.Context(), service.OpenSessionRequest{
		ClassName:   req.ClassName,
		TeacherID:   actor.UserID,
		TeacherName: actor.Name,
		Date:        req.Date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session, "Session de présence ouverte")
}

// GetSession godoc
// @Summary Get the session of a class on a day
// @Tags Attendance
// @Produce json
// @Param className query string true "Class name"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance/sessions [get]
func (h *AttendanceHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Request.Context(), c.Query("className"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if session == nil {
		response.JSON(c, http.StatusOK, nil, "Aucune session pour cette classe et cette date")
		return
	}
	response.JSON(c, http.StatusOK, session, "")
}

// GetSessionByID godoc
// @Summary Get a session by id
// @Tags Attendance
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/sessions/{id} [get]
func (h *AttendanceHandler) GetSessionByID(c *gin.Context) {
	session, err := h.sessions.GetSessionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, "")
}

// RecordStatus godoc
// @Summary Record one student's status
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RecordStatusRequest true "Record"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/sessions/{id}/records [post]
func (h *AttendanceHandler) RecordStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecordStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	record, err := h.sessions.RecordStatus(c.Request.Context(), service.RecordStatusRequest{
		SessionID:   c.Param("id"),
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		ClassName:   req.ClassName,
		Date:        req.Date,
		Status:      req.Status,
		TeacherID:   actor.UserID,
		TeacherName: actor.Name,
		Notes:       req.Notes,
		ArrivalTime: req.ArrivalTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, "Présence enregistrée")
}

// RecordBulk godoc
// @Summary Record several students at once
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RecordBulkRequest true "Records"
// @Success 200 {object} response.Envelope
// @Router /attendance/sessions/{id}/records/bulk [post]
func (h *AttendanceHandler) RecordBulk(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecordBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	items := make([]service.BulkRecordItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.BulkRecordItem{
			StudentID:   item.StudentID,
			StudentName: item.StudentName,
			Status:      item.Status,
			Notes:       item.Notes,
			ArrivalTime: item.ArrivalTime,
		})
	}
	result, err := h.sessions.RecordBulk(c.Request.Context(), service.RecordBulkRequest{
		SessionID:   c.Param("id"),
		TeacherID:   actor.UserID,
		TeacherName: actor.Name,
		Items:       items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, fmt.Sprintf("%d présences enregistrées", len(result.Records)))
}

// CompleteSession godoc
// @Summary Complete a session, auto-marking unmarked students absent by default
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.CompleteSessionRequest false "Options"
// @Success 200 {object} response.Envelope
// @Router /attendance/sessions/{id}/complete [post]
func (h *AttendanceHandler) CompleteSession(c *gin.Context) {
	var req dto.CompleteSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
			return
		}
	}
	session, err := h.sessions.CompleteSession(c.Request.Context(), service.CompleteSessionRequest{
		SessionID:            c.Param("id"),
		MarkUnmarkedAsAbsent: req.MarkUnmarkedAsAbsent,
		Notes:                req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, "Session de présence clôturée")
}

// GetRecords godoc
// @Summary List a class's records for a day
// @Tags Attendance
// @Produce json
// @Param className query string true "Class name"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance/records [get]
func (h *AttendanceHandler) GetRecords(c *gin.Context) {
	records, err := h.sessions.GetRecords(c.Request.Context(), c.Query("className"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, "", map[string]interface{}{"total": len(records)})
}

// MonthlyStats godoc
// @Summary Monthly attendance statistics over completed sessions
// @Tags Attendance
// @Produce json
// @Param className query string false "Class name"
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Success 200 {object} response.Envelope
// @Router /attendance/stats/monthly [get]
func (h *AttendanceHandler) MonthlyStats(c *gin.Context) {
	stats, cacheHit, err := h.rollup.MonthlyStats(c.Request.Context(), c.Query("className"), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, "", middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download attendance records of a date range
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param className query string false "Class name"
// @Param startDate query string false "First day (YYYY-MM-DD), defaults to the first of the month"
// @Param endDate query string false "Last day (YYYY-MM-DD), defaults to today"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ExportFormatCSV))))
	window, err := h.exports.ResolveRange(c.Query("className"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.Render(c.Request.Context(), format, window)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Header("X-Total-Rows", fmt.Sprintf("%d", doc.Rows))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
