// internal/domain/user/entity.go
package user

import (
	"time"

	"gorm.io/gorm"
)

// Role values for users
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents the user entity
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string         `gorm:"not null;size:255" json:"-"`
	Role      string         `gorm:"not null;size:20;default:'customer'" json:"role"`
	Address   string         `gorm:"size:500" json:"address"`
	City      string         `gorm:"size:100" json:"city"`
	State     string         `gorm:"size:100" json:"state"`
	Zipcode   string         `gorm:"size:20" json:"zipcode"`
	Phone     string         `gorm:"size:20" json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
