package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the JWT claims carried by a session token.
// Locally issued tokens put the owner email in the subject claim;
// tokens from an external identity provider may carry it in the
// email claim instead.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the resolved owner identity for the token.
func (c *SessionClaims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}
