// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem represents one (user, product) cart line. Price is a snapshot of
// the product price at add time and is not re-synced afterwards.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index:idx_cart_user_product" json:"user_id"`
	ProductID uint            `gorm:"not null;index:idx_cart_user_product" json:"product_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// CartSummary represents calculated cart totals
type CartSummary struct {
	ItemCount int             `json:"item_count"` // Sum of all quantities
	Total     decimal.Decimal `json:"total"`
}
