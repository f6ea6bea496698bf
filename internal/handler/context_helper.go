package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Junior-NGOY/masomo-sub003/internal/middleware"
	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

// caller is the authenticated identity attached by middleware.JWT.
type caller struct {
	actor models.Actor
	role  models.UserRole
}

// callerFromContext resolves the authenticated caller, reporting false when
// the request carries no usable claims.
func callerFromContext(c *gin.Context) (caller, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return caller{}, false
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims == nil || claims.UserID == "" {
		return caller{}, false
	}
	return caller{actor: claims.Actor(), role: claims.Role}, true
}

// actorFromContext is callerFromContext for handlers that only credit writes.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	who, ok := callerFromContext(c)
	return who.actor, ok
}
