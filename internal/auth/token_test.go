package auth

import (
	"testing"
	"time"

	"github.com/coursemarket/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenVerifier_ValidateAccessToken(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	t.Run("valid token", func(t *testing.T) {
		tokenString := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "ext-user-1",
			"role": float64(models.RoleAdmin),
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		externalID, role, err := verifier.ValidateAccessToken(tokenString)

		assert.NoError(t, err)
		assert.Equal(t, "ext-user-1", externalID)
		assert.Equal(t, models.RoleAdmin, role)
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "ext-user-1",
			"role": float64(models.RoleUser),
			"exp":  time.Now().Add(-time.Hour).Unix(),
		})

		_, _, err := verifier.ValidateAccessToken(tokenString)

		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tokenString := signToken(t, "other-secret", jwt.MapClaims{
			"sub":  "ext-user-1",
			"role": float64(models.RoleUser),
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		_, _, err := verifier.ValidateAccessToken(tokenString)

		assert.Error(t, err)
	})

	t.Run("missing sub claim", func(t *testing.T) {
		tokenString := signToken(t, testSecret, jwt.MapClaims{
			"role": float64(models.RoleUser),
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		_, _, err := verifier.ValidateAccessToken(tokenString)

		assert.Error(t, err)
	})

	t.Run("missing role claim", func(t *testing.T) {
		tokenString := signToken(t, testSecret, jwt.MapClaims{
			"sub": "ext-user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, _, err := verifier.ValidateAccessToken(tokenString)

		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := verifier.ValidateAccessToken("not-a-token")

		assert.Error(t, err)
	})
}
