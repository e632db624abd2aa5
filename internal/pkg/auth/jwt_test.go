// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/toycart-backend/internal/config"
)

func testConfig(expiry time.Duration) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "ToyCart API"},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-that-is-long-enough!!",
			TokenExpiry: expiry,
		},
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(testConfig(time.Hour))

	token, err := manager.GenerateToken(42, RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager(testConfig(-time.Minute))

	token, err := manager.GenerateToken(42, RoleCustomer)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig(time.Hour))

	token, err := manager.GenerateToken(42, RoleCustomer)
	require.NoError(t, err)

	other := NewJWTManager(&config.Config{
		JWT: config.JWTConfig{Secret: "a-completely-different-secret-value!", TokenExpiry: time.Hour},
	})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := NewJWTManager(testConfig(time.Hour))

	_, err := manager.ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromHeader("Bearer abc123"))
	assert.Equal(t, "abc123", ExtractTokenFromHeader("bearer abc123"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc123"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc123"))
}

func TestPasswordManager(t *testing.T) {
	manager := NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
	})

	hash, err := manager.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	require.NoError(t, manager.VerifyPassword("password123", hash))
	require.Error(t, manager.VerifyPassword("wrong", hash))
}

func TestValidatePassword_TooShort(t *testing.T) {
	manager := NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
	})

	_, err := manager.HashPassword("short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6 characters")
}
