// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Availability represents the sellable state of a product
type Availability string

const (
	AvailabilityInStock      Availability = "in_stock"
	AvailabilityOutOfStock   Availability = "out_of_stock"
	AvailabilityDiscontinued Availability = "discontinued"
)

// Product represents the product entity
type Product struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"not null;size:255" json:"name"`
	Description      string          `gorm:"type:text" json:"description"`
	ShortDescription string          `gorm:"size:500" json:"short_description"`
	Price            decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	CategoryID       uint            `gorm:"not null;index" json:"category_id"`
	ImageURL         string          `gorm:"size:500" json:"image_url"`
	Stock            int             `gorm:"not null;default:0" json:"stock"`
	Rating           float64         `gorm:"type:decimal(3,2);default:0" json:"rating"`
	NumberOfReviews  int             `gorm:"not null;default:0" json:"number_of_reviews"`
	IsFeatured       bool            `gorm:"default:false" json:"is_featured"`
	Availability     Availability    `gorm:"size:20;default:'in_stock'" json:"availability"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;uniqueIndex;size:255" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// ApplyStockDelta computes the stock level and availability label after a
// stock movement. Checkout passes a negative delta, cancellation a positive
// one. The result is not clamped at zero: callers are expected to have
// validated the movement, and a negative result indicates a bug upstream
// rather than something to paper over here.
//
// A restoring movement flips availability back to in_stock regardless of a
// prior discontinued label.
func ApplyStockDelta(stock, delta int) (int, Availability) {
	newStock := stock + delta
	if newStock <= 0 {
		return newStock, AvailabilityOutOfStock
	}
	return newStock, AvailabilityInStock
}

// IsInStock reports whether the product can currently be sold.
func (p *Product) IsInStock() bool {
	return p.Stock > 0 && p.Availability == AvailabilityInStock
}

// IsLowStock reports whether the product is below the low-stock alert line.
func (p *Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// LowStockThreshold is the stock level below which admin alerts fire.
const LowStockThreshold = 5
