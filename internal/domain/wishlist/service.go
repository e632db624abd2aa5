// internal/domain/wishlist/service.go
package wishlist

import (
	"fmt"

	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles wishlist business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetWishlist retrieves all wishlist items for the user, newest first
func (s *Service) GetWishlist(userID uint) ([]WishlistItem, error) {
	var items []WishlistItem
	err := s.db.Preload("Product").Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	return items, nil
}

// AddToWishlist saves a product to the user's wishlist
func (s *Service) AddToWishlist(userID, productID uint) (*WishlistItem, error) {
	var product catalog.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Product not found")
	}

	var existing WishlistItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("Product already in wishlist")
	}

	item := WishlistItem{UserID: userID, ProductID: productID}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	item.Product = &product
	return &item, nil
}

// RemoveFromWishlist removes a product from the user's wishlist
func (s *Service) RemoveFromWishlist(userID, productID uint) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Product not in wishlist")
	}
	return nil
}

// IsInWishlist reports whether the user has saved the product
func (s *Service) IsInWishlist(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return count > 0, nil
}
