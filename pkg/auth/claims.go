package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uint
	Username string
	Role     enums.UserRole
	// JTI doubles as the Redis session key so tokens can be revoked.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uint           `json:"user_id"`
	Username string         `json:"username"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
