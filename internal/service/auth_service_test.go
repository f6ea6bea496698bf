package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
)

func newAuthServiceForTest() *AuthService {
	return NewAuthService(zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Minute,
		Issuer:            "masomo",
		Audience:          []string{"masomo-attendance"},
	})
}

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := newAuthServiceForTest()
	token, expiresAt, err := svc.IssueToken("teacher-1", models.RoleTeacher, "kabila@example.cd", "Mme Kabila")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, models.Actor{UserID: "teacher-1", Name: "Mme Kabila"}, claims.Actor())
}

func TestAuthServiceRejectsWrongSecret(t *testing.T) {
	other := NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "other", Issuer: "masomo", Audience: []string{"masomo-attendance"}})
	token, _, err := other.IssueToken("teacher-1", models.RoleTeacher, "", "")
	require.NoError(t, err)

	_, err = newAuthServiceForTest().ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRejectsExpiredAndForeignAlg(t *testing.T) {
	svc := newAuthServiceForTest()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID: "teacher-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "masomo",
			Audience:  []string{"masomo-attendance"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "teacher-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
