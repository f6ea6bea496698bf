package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
	"github.com/Junior-NGOY/masomo-sub003/pkg/response"
)

// RequireRoles lets the request through only when the token's role is one of
// roles. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
