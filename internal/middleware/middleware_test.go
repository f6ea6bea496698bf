package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
	"github.com/Junior-NGOY/masomo-sub003/pkg/middleware/requestid"
)

type staticValidator struct {
	claims *models.JWTClaims
}

func (s staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.ErrUnauthorized
	}
	return s.claims, nil
}

func serve(r *gin.Engine, header string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestJWTAndRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	teacher := &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher}

	r := gin.New()
	r.GET("/x", JWT(staticValidator{claims: teacher}), RequireRoles(models.RoleTeacher, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	cases := map[string]int{
		"":            http.StatusUnauthorized,
		"Bearer":      http.StatusUnauthorized,
		"Basic good":  http.StatusUnauthorized,
		"Bearer bad":  http.StatusUnauthorized,
		"Bearer good": http.StatusNoContent,
		"bearer good": http.StatusNoContent,
	}
	for header, want := range cases {
		assert.Equal(t, want, serve(r, header), header)
	}
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	student := &models.JWTClaims{UserID: "s-1", Role: models.RoleStudent}

	r := gin.New()
	r.GET("/x", JWT(staticValidator{claims: student}), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer good"))
}

func TestResponseMetaRecordsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}

	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/x", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, ""))
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, processingKey)
}

func TestResponseMetaIsSerialisedWithTimingAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(requestid.Middleware(), WithResponseMeta())
	r.GET("/x", func(c *gin.Context) {
		SetCacheHit(c, false)
		c.JSON(http.StatusOK, gin.H{"meta": ExtractMeta(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body.Meta[requestIDKey])
	assert.Equal(t, false, body.Meta[cacheHitKey])
	assert.Contains(t, body.Meta, processingKey)
}
