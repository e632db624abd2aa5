// internal/domain/user/service_test.go
package user

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-that-is-long-enough!!",
			TokenExpiry: 7 * 24 * time.Hour,
		},
	}
}

func registerRequest(email string) *RegisterRequest {
	return &RegisterRequest{
		Name:            "Test User",
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	created, err := svc.Register(registerRequest("User@Example.COM"))
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", created.Email)
	assert.Equal(t, RoleCustomer, created.Role)
	assert.NotEqual(t, "password123", created.Password)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	req := registerRequest("a@x.com")
	req.ConfirmPassword = "different"

	_, err := svc.Register(req)
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", err.Error())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	_, err := svc.Register(registerRequest("a@x.com"))
	require.NoError(t, err)

	_, err = svc.Register(registerRequest("A@X.com"))
	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	_, err := svc.Register(registerRequest("a@x.com"))
	require.NoError(t, err)

	response, err := svc.Login(&LoginRequest{Email: "a@x.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, "a@x.com", response.User.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	_, err := svc.Register(registerRequest("a@x.com"))
	require.NoError(t, err)

	// Unknown email and wrong password produce the same message.
	_, err = svc.Login(&LoginRequest{Email: "nobody@x.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Equal(t, 401, apperrors.StatusCode(err))

	_, err = svc.Login(&LoginRequest{Email: "a@x.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	created, err := svc.Register(registerRequest("a@x.com"))
	require.NoError(t, err)

	city := "Springfield"
	phone := "555-0100"
	updated, err := svc.UpdateProfile(created.ID, &UpdateProfileRequest{City: &city, Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, "Springfield", updated.City)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "Test User", updated.Name)
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	created, err := svc.Register(registerRequest("a@x.com"))
	require.NoError(t, err)

	err = svc.ChangePassword(created.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword",
		ConfirmPassword: "newpassword",
	})
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", err.Error())

	err = svc.ChangePassword(created.ID, &ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword",
		ConfirmPassword: "newpassword",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "a@x.com", Password: "newpassword"})
	require.NoError(t, err)
}
