package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Junior-NGOY/masomo-sub003/internal/dto"
	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	"github.com/Junior-NGOY/masomo-sub003/internal/service"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
)

type fakeExportJobSrv struct {
	lastReq   dto.ExportJobRequest
	lastActor string
	lastRole  models.UserRole
	statusErr error
	download  *service.ExportDownload
	dlErr     error
}

func (f *fakeExportJobSrv) CreateJob(_ context.Context, req dto.ExportJobRequest, actorID string) (*dto.ExportJobResponse, error) {
	f.lastReq = req
	f.lastActor = actorID
	return &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued}, nil
}

func (f *fakeExportJobSrv) GetStatus(_ context.Context, id, actorID string, role models.UserRole) (*dto.ExportJobStatusResponse, error) {
	f.lastActor = actorID
	f.lastRole = role
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &dto.ExportJobStatusResponse{ID: id, Status: models.ExportStatusProcessing, Progress: 10}, nil
}

func (f *fakeExportJobSrv) ResolveDownload(context.Context, string) (*service.ExportDownload, error) {
	return f.download, f.dlErr
}

func newExportJobAPI(t *testing.T, srv *fakeExportJobSrv) *attendanceAPI {
	t.Helper()
	api := newAttendanceAPI(t)
	r := gin.New()
	Register(r.Group("/api/v1"), Routes{
		Auth:       api.auth,
		Attendance: NewAttendanceHandler(nil, nil, nil),
		ExportJobs: NewExportJobHandler(srv),
	})
	api.router = r
	return api
}

func TestExportJobCreateAccepted(t *testing.T) {
	srv := &fakeExportJobSrv{}
	api := newExportJobAPI(t, srv)

	rec := api.do(t, http.MethodPost, "/api/v1/attendance/exports", api.token(t, models.RoleTeacher), map[string]string{
		"format":    "pdf",
		"className": "6A",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, models.ExportFormatPDF, srv.lastReq.Format)
	require.NotNil(t, srv.lastReq.ClassName)
	assert.Equal(t, "6A", *srv.lastReq.ClassName)
	assert.Equal(t, "user-teacher", srv.lastActor)
}

func TestExportJobStatusPassesRole(t *testing.T) {
	srv := &fakeExportJobSrv{}
	api := newExportJobAPI(t, srv)

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/exports/job-1", api.token(t, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdmin, srv.lastRole)

	srv.statusErr = appErrors.ErrForbidden
	rec = api.do(t, http.MethodGet, "/api/v1/attendance/exports/job-1", api.token(t, models.RoleTeacher), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportJobDownloadWithoutBearer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n1;2\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	srv := &fakeExportJobSrv{download: &service.ExportDownload{
		File:        file,
		Filename:    "presences_6A_2024-03-01_2024-03-31.csv",
		ContentType: "text/csv; charset=utf-8",
		ExpiresAt:   time.Now().Add(time.Hour),
	}}
	api := newExportJobAPI(t, srv)

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/exports/download/signed-token", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a;b\n1;2\n", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "presences_6A_2024-03-01_2024-03-31.csv")
}

func TestExportJobDownloadNotReady(t *testing.T) {
	api := newExportJobAPI(t, &fakeExportJobSrv{dlErr: appErrors.ErrExportNotReady})

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/exports/download/signed-token", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EXPORT_NOT_READY", decodeEnvelope(t, rec).Error)
}

func TestMetricsHandlerReadyReportsDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)

	api := &attendanceAPI{router: r}
	rec := api.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = api.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
