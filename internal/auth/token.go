// Package auth verifies access tokens issued by the identity provider
// and guards routes. Tokens are never issued here; sign-in lives at the
// provider.
package auth

import (
	"fmt"

	"github.com/coursemarket/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates HS256 access tokens
type TokenVerifier struct {
	secret string
}

// NewTokenVerifier creates a new token verifier
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: secret}
}

// ValidateAccessToken validates an access token and returns the external
// user ID ("sub" claim) and role
func (tv *TokenVerifier) ValidateAccessToken(tokenString string) (string, models.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tv.secret), nil
	})

	if err != nil {
		return "", 0, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", 0, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, fmt.Errorf("invalid token claims")
	}

	externalID, ok := claims["sub"].(string)
	if !ok || externalID == "" {
		return "", 0, fmt.Errorf("sub not found in token")
	}

	// JWT claims decode numbers as float64
	roleFloat, ok := claims["role"].(float64)
	if !ok {
		return "", 0, fmt.Errorf("role not found in token")
	}

	return externalID, models.Role(roleFloat), nil
}
