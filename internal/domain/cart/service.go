// internal/domain/cart/service.go
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CartItemResponse represents a cart line with its product attached
type CartItemResponse struct {
	CartItem
	Product *catalog.Product `json:"product,omitempty"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	Items   []CartItemResponse `json:"items"`
	Summary CartSummary        `json:"summary"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// GetCart retrieves the user's cart with product details and totals
func (s *Service) GetCart(userID uint) (*CartResponse, error) {
	items, err := s.loadItems(s.db, userID)
	if err != nil {
		return nil, err
	}

	return &CartResponse{
		Items:   items,
		Summary: summarize(items),
	}, nil
}

// AddToCart adds a product to the cart, incrementing the quantity if the
// (user, product) line already exists. The cart line snapshots the product
// price at add time.
func (s *Service) AddToCart(userID uint, req *AddToCartRequest) (*CartItemResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperrors.Validation("Product ID and quantity required")
	}

	var product catalog.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Product not found")
	}

	if product.Stock < quantity {
		return nil, apperrors.Validationf("Only %d items available", product.Stock)
	}

	var item CartItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		newQuantity := item.Quantity + quantity
		if product.Stock < newQuantity {
			return nil, apperrors.Validationf("Only %d items available", product.Stock)
		}
		if err := s.db.Model(&item).Update("quantity", newQuantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		item.Quantity = newQuantity
	case err == gorm.ErrRecordNotFound:
		item = CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  quantity,
			Price:     product.Price,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	}

	return &CartItemResponse{CartItem: item, Product: &product}, nil
}

// UpdateCartItem sets the quantity of a cart line; quantity 0 removes it
func (s *Service) UpdateCartItem(userID, cartItemID uint, req *UpdateCartItemRequest) (*CartItemResponse, error) {
	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, apperrors.Validation("Invalid quantity")
	}
	quantity := *req.Quantity

	var item CartItem
	if err := s.db.First(&item, cartItemID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Cart item not found")
	}
	if item.UserID != userID {
		return nil, apperrors.NotFound("Cart item not found")
	}

	if quantity == 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return nil, nil
	}

	var product catalog.Product
	if err := s.db.First(&product, item.ProductID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Product not found")
	}
	if product.Stock < quantity {
		return nil, apperrors.Validationf("Only %d items available", product.Stock)
	}

	if err := s.db.Model(&item).Update("quantity", quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = quantity

	return &CartItemResponse{CartItem: item, Product: &product}, nil
}

// RemoveFromCart deletes a single cart line owned by the user
func (s *Service) RemoveFromCart(userID, cartItemID uint) error {
	var item CartItem
	if err := s.db.First(&item, cartItemID).Error; err != nil {
		return apperrors.FromDB(err, "Cart item not found")
	}
	if item.UserID != userID {
		return apperrors.NotFound("Cart item not found")
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// ClearCart removes all cart lines for the user
func (s *Service) ClearCart(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// loadItems fetches cart lines with products using the given handle, so
// checkout can reuse it inside a transaction.
func (s *Service) loadItems(db *gorm.DB, userID uint) ([]CartItemResponse, error) {
	var dbItems []CartItem
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&dbItems).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	items := make([]CartItemResponse, len(dbItems))
	for i, item := range dbItems {
		items[i] = CartItemResponse{CartItem: item}

		var product catalog.Product
		if err := db.First(&product, item.ProductID).Error; err == nil {
			items[i].Product = &product
		}
	}
	return items, nil
}

func summarize(items []CartItemResponse) CartSummary {
	summary := CartSummary{Total: decimal.Zero}
	for _, item := range items {
		summary.ItemCount += item.Quantity
		if item.Product != nil {
			summary.Total = summary.Total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		} else {
			summary.Total = summary.Total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return summary
}
