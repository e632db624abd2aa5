// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Order status constants
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment status constants
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Order represents a placed order
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"not null;uniqueIndex;size:64" json:"order_number"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	TotalAmount   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_amount"`
	Status        string          `gorm:"not null;size:20;default:'pending'" json:"status"`
	PaymentMethod string          `gorm:"size:50;default:'cash_on_delivery'" json:"payment_method"`
	PaymentStatus string          `gorm:"size:20;default:'pending'" json:"payment_status"`

	// Delivery information captured at checkout
	DeliveryAddress string `gorm:"not null;size:500" json:"delivery_address"`
	DeliveryCity    string `gorm:"not null;size:100" json:"delivery_city"`
	DeliveryState   string `gorm:"not null;size:100" json:"delivery_state"`
	DeliveryZipcode string `gorm:"not null;size:20" json:"delivery_zipcode"`
	DeliveryPhone   string `gorm:"not null;size:20" json:"delivery_phone"`

	// Fulfillment metadata set by admins
	ShippingDate   *time.Time `json:"shipping_date,omitempty"`
	DeliveryDate   *time.Time `json:"delivery_date,omitempty"`
	TrackingNumber string     `gorm:"size:100" json:"tracking_number,omitempty"`
	SpecialNotes   string     `gorm:"size:500" json:"special_notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User  *user.User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem represents a line on an order. Price and name are snapshots
// taken at checkout so later catalog edits do not rewrite order history.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	TotalPrice  decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`

	// Relationships
	Product *catalog.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"product,omitempty"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// CanBeCancelled reports whether the customer may still cancel the order.
// Only pending orders qualify; anything further along has to go through
// an admin.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending
}

// IsValidStatus reports whether s is a known order status
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
