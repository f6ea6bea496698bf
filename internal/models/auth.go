package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles carried by externally issued tokens.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleTeacher    UserRole = "TEACHER"
	RoleStudent    UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the identity credited with a write.
func (c *JWTClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	name := c.FullName
	if name == "" {
		name = c.Email
	}
	return Actor{UserID: c.UserID, Name: name}
}
