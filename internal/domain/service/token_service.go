package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenService verifies access tokens issued by the auth provider. The core
// never mints credentials; it only checks what the provider signed.
type TokenService interface {
	// ValidateToken parses and verifies a signed token against the given secret.
	ValidateToken(tokenString string, secret string) (*jwt.Token, error)
}
