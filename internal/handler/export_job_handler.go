package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Junior-NGOY/masomo-sub003/internal/dto"
	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	"github.com/Junior-NGOY/masomo-sub003/internal/service"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
	"github.com/Junior-NGOY/masomo-sub003/pkg/response"
)

type exportJobService interface {
	CreateJob(ctx context.Context, req dto.ExportJobRequest, actorID string) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExportJobStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportJobHandler exposes asynchronous attendance export endpoints.
type ExportJobHandler struct {
	service exportJobService
}

// NewExportJobHandler constructs the handler.
func NewExportJobHandler(service exportJobService) *ExportJobHandler {
	return &ExportJobHandler{service: service}
}

// Create godoc
// @Summary Queue an attendance export
// @Tags Attendance Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportJobRequest true "Export range and format"
// @Success 202 {object} response.Envelope
// @Router /attendance/exports [post]
func (h *ExportJobHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export jobs disabled"))
		return
	}
	who, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ExportJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	resp, err := h.service.CreateJob(c.Request.Context(), req, who.actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, resp, "Export en file d'attente")
}

// Status godoc
// @Summary Export job status
// @Tags Attendance Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/exports/{id} [get]
func (h *ExportJobHandler) Status(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export jobs disabled"))
		return
	}
	who, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resp, err := h.service.GetStatus(c.Request.Context(), c.Param("id"), who.actor.UserID, who.role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, "")
}

// Download godoc
// @Summary Download a finished export via its signed token
// @Tags Attendance Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /attendance/exports/download/{token} [get]
func (h *ExportJobHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export jobs disabled"))
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	size := int64(-1)
	if info, err := result.File.Stat(); err == nil {
		size = info.Size()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, result.ContentType, result.File, nil)
}
