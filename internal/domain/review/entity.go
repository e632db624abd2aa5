// internal/domain/review/entity.go
package review

import (
	"time"

	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Review represents a product review. A user reviews a product at most
// once; the service checks before insert so a deleted review can be
// replaced with a fresh one.
type Review struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"not null;index:idx_review_user_product" json:"user_id"`
	ProductID          uint           `gorm:"not null;index:idx_review_user_product" json:"product_id"`
	Rating             int            `gorm:"not null" json:"rating"`
	Title              string         `gorm:"size:255" json:"title"`
	ReviewText         string         `gorm:"type:text" json:"review_text"`
	IsVerifiedPurchase bool           `gorm:"default:false" json:"is_verified_purchase"`
	HelpfulCount       int            `gorm:"not null;default:0" json:"helpful_count"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    *user.User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product *catalog.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides
func (Review) TableName() string { return "reviews" }

// IsValidRating reports whether r is within the 1 to 5 star scale
func IsValidRating(r int) bool {
	return r >= 1 && r <= 5
}
