package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	"github.com/Junior-NGOY/masomo-sub003/internal/repository"
	"github.com/Junior-NGOY/masomo-sub003/internal/service"
)

const testSecret = "handler-test-secret"

type responseEnvelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Meta    map[string]interface{} `json:"meta"`
}

type attendanceAPI struct {
	router *gin.Engine
	store  *repository.MemoryStore
	auth   *service.AuthService
}

func newAttendanceAPI(t *testing.T) *attendanceAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	store.SetRoster("6A",
		models.ClassStudent{ID: "stu-1", Name: "Amani Ilunga", RollNumber: 1},
		models.ClassStudent{ID: "stu-2", Name: "Bora Kasongo", RollNumber: 2},
		models.ClassStudent{ID: "stu-3", Name: "Chance Mwamba", RollNumber: 3},
		models.ClassStudent{ID: "stu-4", Name: "Dorcas Ngoy", RollNumber: 4},
	)

	rollup := service.NewAttendanceRollupService(store, nil, nil, time.UTC, 0, nil)
	sessions := service.NewAttendanceSessionService(store, store, nil, rollup, nil,
		service.AttendanceSessionConfig{Location: time.UTC}, nil, nil)
	exports := service.NewAttendanceExportService(store, nil, nil, time.UTC, nil)
	auth := service.NewAuthService(nil, service.AuthConfig{AccessTokenSecret: testSecret})

	r := gin.New()
	Register(r.Group("/api/v1"), Routes{
		Auth:       auth,
		Attendance: NewAttendanceHandler(sessions, rollup, exports),
	})
	return &attendanceAPI{router: r, store: store, auth: auth}
}

func (a *attendanceAPI) token(t *testing.T, role models.UserRole) string {
	t.Helper()
	token, _, err := a.auth.IssueToken("user-"+strings.ToLower(string(role)), role, "", "Mme Kabeya")
	require.NoError(t, err)
	return token
}

func (a *attendanceAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (a *attendanceAPI) openSession(t *testing.T, token string) models.ClassDailyAttendance {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/attendance/sessions", token, map[string]string{"className": "6A", "date": "2024-03-11"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session models.ClassDailyAttendance
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &session))
	return session
}

func TestAttendanceRoutesRequireToken(t *testing.T) {
	api := newAttendanceAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/sessions?className=6A", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Error)
	assert.Equal(t, "Authentification requise.", env.Message)

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/sessions?className=6A", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttendanceRoutesRejectStudents(t *testing.T) {
	api := newAttendanceAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/attendance/sessions", api.token(t, models.RoleStudent), map[string]string{"className": "6A"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, rec).Error)
}

func TestOpenSessionSnapshotsRosterAndRejectsDuplicate(t *testing.T) {
	api := newAttendanceAPI(t)
	token := api.token(t, models.RoleTeacher)

	session := api.openSession(t, token)
	assert.Equal(t, "6A", session.ClassName)
	assert.Equal(t, "2024-03-11", session.Date)
	assert.Equal(t, 4, session.TotalStudents)
	assert.Equal(t, "user-teacher", session.OpenedByUserID)
	assert.False(t, session.IsCompleted)

	rec := api.do(t, http.MethodPost, "/api/v1/attendance/sessions", token, map[string]string{"className": "6A", "date": "2024-03-11"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SESSION_ALREADY_EXISTS", decodeEnvelope(t, rec).Error)
}

func TestOpenSessionRequiresClassName(t *testing.T) {
	api := newAttendanceAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/attendance/sessions", api.token(t, models.RoleTeacher), map[string]string{"date": "2024-03-11"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error)
}

func TestOpenSessionUnknownClassIsRosterUnavailable(t *testing.T) {
	api := newAttendanceAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/attendance/sessions", api.token(t, models.RoleTeacher), map[string]string{"className": "9Z", "date": "2024-03-11"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ROSTER_UNAVAILABLE", decodeEnvelope(t, rec).Error)
}

func TestGetSessionReturnsNullWhenAbsent(t *testing.T) {
	api := newAttendanceAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/sessions?className=6A&date=2024-03-11", api.token(t, models.RoleTeacher), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.True(t, len(env.Data) == 0 || string(env.Data) == "null")
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	api := newAttendanceAPI(t)
	token := api.token(t, models.RoleTeacher)
	session := api.openSession(t, token)
	base := fmt.Sprintf("/api/v1/attendance/sessions/%s", session.ID)

	rec := api.do(t, http.MethodPost, base+"/records", token, map[string]string{
		"studentId":   "stu-1",
		"studentName": "Amani Ilunga",
		"status":      "late",
		"arrivalTime": "07:45",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var record models.DailyAttendanceRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &record))
	assert.Equal(t, models.AttendanceStatusLate, record.Status)
	assert.Equal(t, "2024-03-11", record.Date)

	rec = api.do(t, http.MethodPost, base+"/records/bulk", token, map[string]interface{}{
		"items": []map[string]string{
			{"studentId": "stu-2", "studentName": "Bora Kasongo", "status": "PRESENT"},
			{"studentId": "stu-3", "studentName": "Chance Mwamba", "status": "EXCUSED"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bulk service.BulkRecordResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &bulk))
	assert.Len(t, bulk.Records, 2)
	assert.Equal(t, 1, bulk.Session.PresentCount)
	assert.Equal(t, 1, bulk.Session.LateCount)
	assert.Equal(t, 1, bulk.Session.ExcusedCount)

	rec = api.do(t, http.MethodPost, base+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var completed models.ClassDailyAttendance
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &completed))
	assert.True(t, completed.IsCompleted)
	assert.Equal(t, 1, completed.AbsentCount)
	assert.Equal(t, 50, completed.AttendancePercentage)

	rec = api.do(t, http.MethodPost, base+"/records", token, map[string]string{"studentId": "stu-4", "status": "PRESENT"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SESSION_COMPLETED", decodeEnvelope(t, rec).Error)

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/records?className=6A&date=2024-03-11", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.EqualValues(t, 4, env.Meta["total"])

	rec = api.do(t, http.MethodGet, "/api/v1/attendance/stats/monthly?className=6A&month=2024-03", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	var stats models.MonthlyAttendanceStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalDays)
	assert.Equal(t, 50, stats.AverageAttendance)
	assert.Equal(t, 1, stats.ClassesWithLowAttendance)
	assert.Equal(t, false, env.Meta["cache_hit"])
}

func TestRecordStatusRejectsUnknownStatus(t *testing.T) {
	api := newAttendanceAPI(t)
	token := api.token(t, models.RoleTeacher)
	session := api.openSession(t, token)

	rec := api.do(t, http.MethodPost, "/api/v1/attendance/sessions/"+session.ID+"/records", token, map[string]string{
		"studentId": "stu-1",
		"status":    "SICK",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RECORD_VALIDATION_ERROR", decodeEnvelope(t, rec).Error)
}

func TestGetSessionByIDNotFound(t *testing.T) {
	api := newAttendanceAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/sessions/missing", api.token(t, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", decodeEnvelope(t, rec).Error)
}

func TestExportIsAdminOnlyAndStreamsCSV(t *testing.T) {
	api := newAttendanceAPI(t)
	teacher := api.token(t, models.RoleTeacher)
	session := api.openSession(t, teacher)
	rec := api.do(t, http.MethodPost, "/api/v1/attendance/sessions/"+session.ID+"/complete", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	path := "/api/v1/attendance/export?className=6A&startDate=2024-03-01&endDate=2024-03-31"
	rec = api.do(t, http.MethodGet, path, teacher, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, path, api.token(t, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "presences_6A_2024-03-01_2024-03-31.csv")
	assert.Equal(t, "4", rec.Header().Get("X-Total-Rows"))

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(rec.Body.Bytes(), []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	for _, row := range rows[1:] {
		assert.Contains(t, row, "Absent")
	}
}

func TestExportRejectsInvertedRange(t *testing.T) {
	api := newAttendanceAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/attendance/export?startDate=2024-03-31&endDate=2024-03-01", api.token(t, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
