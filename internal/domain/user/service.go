// internal/domain/user/service.go
package user

import (
	"fmt"
	"strings"

	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"github.com/your-org/toycart-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the public user view
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateProfileRequest represents profile update data; nil fields are untouched
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zipcode *string `json:"zipcode"`
	Phone   *string `json:"phone"`
}

// ChangePasswordRequest represents password change data
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// Register creates a new customer account
func (s *Service) Register(req *RegisterRequest) (*User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.Validation("Passwords do not match")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("Email already registered")
	}

	hashed, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user := User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hashed,
		Role:     RoleCustomer,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// Login verifies credentials and issues a token
func (s *Service) Login(req *LoginRequest) (*LoginResponse, error) {
	var user User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil {
		// Same message for unknown email and bad password.
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{Token: token, User: &user}, nil
}

// GetProfile retrieves a user by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, apperrors.FromDB(err, "User not found")
	}
	return &user, nil
}

// UpdateProfile updates the profile fields of a user
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, apperrors.FromDB(err, "User not found")
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.Zipcode != nil {
		updates["zipcode"] = *req.Zipcode
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.GetProfile(userID)
}

// ChangePassword verifies the current password and stores a new one
func (s *Service) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.Validation("New passwords do not match")
	}

	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return apperrors.FromDB(err, "User not found")
	}

	if err := s.passwordManager.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	hashed, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.Validation(err.Error())
	}

	if err := s.db.Model(&user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
