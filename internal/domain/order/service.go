// internal/domain/order/service.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/cart"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateOrderRequest represents checkout data
type CreateOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	DeliveryCity    string `json:"city" binding:"required"`
	DeliveryState   string `json:"state" binding:"required"`
	DeliveryZipcode string `json:"zipcode" binding:"required"`
	DeliveryPhone   string `json:"phone" binding:"required"`
	PaymentMethod   string `json:"payment_method"`
	SpecialNotes    string `json:"special_notes"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Status string `form:"status"`
	UserID uint   `form:"user_id"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// OrderListResponse represents a paginated order listing
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// UpdateStatusRequest represents an admin status update
type UpdateStatusRequest struct {
	Status         string     `json:"status" binding:"required"`
	TrackingNumber *string    `json:"tracking_number"`
	ShippingDate   *time.Time `json:"shipping_date"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	SpecialNotes   *string    `json:"special_notes"`
}

// CreateOrder places an order from the user's cart. The whole checkout
// runs in a single transaction: order rows, stock decrements and cart
// clearing commit together or not at all.
//
// Stock is taken with a conditional decrement (stock = stock - n only
// where stock >= n). Two checkouts racing over the last unit cannot both
// succeed: the loser's update matches no row and the order rolls back.
func (s *Service) CreateOrder(userID uint, req *CreateOrderRequest) (*Order, error) {
	if err := validateDelivery(req); err != nil {
		return nil, err
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash_on_delivery"
	}

	var created Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cartItems []cart.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(cartItems) == 0 {
			return apperrors.Validation("Cart is empty")
		}

		total := decimal.Zero
		orderItems := make([]OrderItem, 0, len(cartItems))

		for _, item := range cartItems {
			var product catalog.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				return apperrors.FromDB(err, "Product not found")
			}

			if product.Stock < item.Quantity {
				return apperrors.InsufficientStock(product.Name)
			}

			// Totals use the product's current price, not the price
			// snapshotted into the cart when the item was added.
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)

			orderItems = append(orderItems, OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       product.Price,
				TotalPrice:  lineTotal,
			})
		}

		created = Order{
			OrderNumber:     generateOrderNumber(userID),
			UserID:          userID,
			TotalAmount:     total,
			Status:          StatusPending,
			PaymentMethod:   paymentMethod,
			PaymentStatus:   PaymentPending,
			DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
			DeliveryCity:    strings.TrimSpace(req.DeliveryCity),
			DeliveryState:   strings.TrimSpace(req.DeliveryState),
			DeliveryZipcode: strings.TrimSpace(req.DeliveryZipcode),
			DeliveryPhone:   strings.TrimSpace(req.DeliveryPhone),
			SpecialNotes:    req.SpecialNotes,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = created.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}

		for _, item := range orderItems {
			if err := s.takeStock(tx, item.ProductID, item.ProductName, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadOrder(created.ID)
}

// takeStock decrements a product's stock inside tx, failing when the
// product no longer has quantity units left.
func (s *Service) takeStock(tx *gorm.DB, productID uint, productName string, quantity int) error {
	result := tx.Model(&catalog.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.InsufficientStock(productName)
	}

	var product catalog.Product
	if err := tx.First(&product, productID).Error; err != nil {
		return fmt.Errorf("failed to reload product: %w", err)
	}
	_, availability := catalog.ApplyStockDelta(product.Stock, 0)
	if product.Availability != catalog.AvailabilityDiscontinued && product.Availability != availability {
		if err := tx.Model(&product).UpdateColumn("availability", availability).Error; err != nil {
			return fmt.Errorf("failed to update availability: %w", err)
		}
	}
	return nil
}

// GetUserOrders retrieves the user's orders, newest first
func (s *Service) GetUserOrders(userID uint, req *OrderListRequest) (*OrderListResponse, error) {
	req.UserID = userID
	return s.listOrders(req)
}

// GetOrders retrieves all orders for admins, optionally filtered
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	return s.listOrders(req)
}

func (s *Service) listOrders(req *OrderListRequest) (*OrderListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Status != "" && !IsValidStatus(req.Status) {
		return nil, apperrors.Validation("Invalid order status")
	}

	query := s.db.Model(&Order{}).Preload("Items").Preload("Items.Product")
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetOrder retrieves a single order. Customers only see their own orders;
// admins see any.
func (s *Service) GetOrder(orderID, userID uint, isAdmin bool) (*Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, apperrors.Forbidden("Unauthorized to view this order")
	}
	return order, nil
}

// CancelOrder cancels a pending order and returns its stock to the
// catalog. Restored products come back as in_stock.
func (s *Service) CancelOrder(orderID, userID uint) (*Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return apperrors.FromDB(err, "Order not found")
		}
		if order.UserID != userID {
			return apperrors.Forbidden("Unauthorized")
		}
		if !order.CanBeCancelled() {
			return apperrors.InvalidState("Can only cancel pending orders")
		}

		for _, item := range order.Items {
			result := tx.Model(&catalog.Product{}).
				Where("id = ?", item.ProductID).
				Updates(map[string]interface{}{
					"stock":        gorm.Expr("stock + ?", item.Quantity),
					"availability": catalog.AvailabilityInStock,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to restore stock: %w", result.Error)
			}
		}

		if err := tx.Model(&order).Update("status", StatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadOrder(orderID)
}

// UpdateStatus sets an order's status and fulfillment metadata. Admin
// only; any valid status can be set regardless of the current one.
func (s *Service) UpdateStatus(orderID uint, req *UpdateStatusRequest) (*Order, error) {
	if !IsValidStatus(req.Status) {
		return nil, apperrors.Validation("Invalid order status")
	}

	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Order not found")
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.TrackingNumber != nil {
		updates["tracking_number"] = *req.TrackingNumber
	}
	if req.SpecialNotes != nil {
		updates["special_notes"] = *req.SpecialNotes
	}

	now := time.Now()
	switch req.Status {
	case StatusShipped:
		if req.ShippingDate != nil {
			updates["shipping_date"] = *req.ShippingDate
		} else if order.ShippingDate == nil {
			updates["shipping_date"] = now
		}
	case StatusDelivered:
		if req.DeliveryDate != nil {
			updates["delivery_date"] = *req.DeliveryDate
		} else if order.DeliveryDate == nil {
			updates["delivery_date"] = now
		}
		updates["payment_status"] = PaymentCompleted
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return s.loadOrder(orderID)
}

func (s *Service) loadOrder(orderID uint) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").Preload("Items.Product").First(&order, orderID).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "Order not found")
	}
	return &order, nil
}

func validateDelivery(req *CreateOrderRequest) error {
	missing := strings.TrimSpace(req.DeliveryAddress) == "" ||
		strings.TrimSpace(req.DeliveryCity) == "" ||
		strings.TrimSpace(req.DeliveryState) == "" ||
		strings.TrimSpace(req.DeliveryZipcode) == "" ||
		strings.TrimSpace(req.DeliveryPhone) == ""
	if missing {
		return apperrors.Validation("Please fill all delivery details")
	}
	return nil
}

func generateOrderNumber(userID uint) string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), userID)
}
