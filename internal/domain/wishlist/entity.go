// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// WishlistItem represents a product saved by a user. Each product appears
// at most once per user.
type WishlistItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_wishlist_user_product" json:"user_id"`
	ProductID uint           `gorm:"not null;index:idx_wishlist_user_product" json:"product_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product *catalog.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides
func (WishlistItem) TableName() string { return "wishlist_items" }
