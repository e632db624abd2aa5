// internal/domain/review/service.go
package review

import (
	"fmt"
	"math"

	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/domain/order"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles review business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new review service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateReviewRequest represents review creation data
type CreateReviewRequest struct {
	ProductID  uint   `json:"productId" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Title      string `json:"title"`
	ReviewText string `json:"review_text"`
}

// UpdateReviewRequest represents review update data; nil fields are untouched
type UpdateReviewRequest struct {
	Rating     *int    `json:"rating"`
	Title      *string `json:"title"`
	ReviewText *string `json:"review_text"`
}

// ReviewListRequest represents review list query parameters
type ReviewListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	SortBy string `form:"sort_by,default=newest"`
}

// ReviewListResponse represents a paginated review listing
type ReviewListResponse struct {
	Reviews       []Review `json:"reviews"`
	Total         int64    `json:"total"`
	AverageRating float64  `json:"average_rating"`
}

// CreateReview adds a review for a product and refreshes the product's
// rating aggregate. A review is flagged verified when the user has a
// delivered order containing the product.
func (s *Service) CreateReview(userID uint, req *CreateReviewRequest) (*Review, error) {
	if !IsValidRating(req.Rating) {
		return nil, apperrors.Validation("Rating must be between 1 and 5")
	}

	var product catalog.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Product not found")
	}

	var existing Review
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("You have already reviewed this product")
	}

	verified, err := s.hasDeliveredPurchase(userID, req.ProductID)
	if err != nil {
		return nil, err
	}

	review := Review{
		UserID:             userID,
		ProductID:          req.ProductID,
		Rating:             req.Rating,
		Title:              req.Title,
		ReviewText:         req.ReviewText,
		IsVerifiedPurchase: verified,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return s.refreshProductRating(tx, req.ProductID)
	})
	if err != nil {
		return nil, err
	}

	return s.getReview(review.ID)
}

// UpdateReview edits the user's own review and refreshes the aggregate
func (s *Service) UpdateReview(reviewID, userID uint, req *UpdateReviewRequest) (*Review, error) {
	var review Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Review not found")
	}
	if review.UserID != userID {
		return nil, apperrors.Forbidden("Unauthorized to edit this review")
	}

	updates := make(map[string]interface{})
	if req.Rating != nil {
		if !IsValidRating(*req.Rating) {
			return nil, apperrors.Validation("Rating must be between 1 and 5")
		}
		updates["rating"] = *req.Rating
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.ReviewText != nil {
		updates["review_text"] = *req.ReviewText
	}

	if len(updates) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&review).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update review: %w", err)
			}
			return s.refreshProductRating(tx, review.ProductID)
		})
		if err != nil {
			return nil, err
		}
	}

	return s.getReview(reviewID)
}

// DeleteReview removes the user's own review and refreshes the aggregate
func (s *Service) DeleteReview(reviewID, userID uint) error {
	var review Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		return apperrors.FromDB(err, "Review not found")
	}
	if review.UserID != userID {
		return apperrors.Forbidden("Unauthorized")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return s.refreshProductRating(tx, review.ProductID)
	})
}

// GetProductReviews retrieves reviews for a product
func (s *Service) GetProductReviews(productID uint, req *ReviewListRequest) (*ReviewListResponse, error) {
	var product catalog.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Product not found")
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	var orderClause string
	switch req.SortBy {
	case "helpful":
		orderClause = "helpful_count DESC, created_at DESC"
	case "rating_high":
		orderClause = "rating DESC, created_at DESC"
	case "rating_low":
		orderClause = "rating ASC, created_at DESC"
	default:
		orderClause = "created_at DESC"
	}

	query := s.db.Model(&Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []Review
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("User").Order(orderClause).Offset(offset).Limit(req.Limit).Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	return &ReviewListResponse{
		Reviews:       reviews,
		Total:         total,
		AverageRating: product.Rating,
	}, nil
}

// MarkHelpful increments a review's helpful counter
func (s *Service) MarkHelpful(reviewID uint) (*Review, error) {
	result := s.db.Model(&Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark review helpful: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("Review not found")
	}
	return s.getReview(reviewID)
}

// refreshProductRating recomputes a product's average rating and review
// count from its remaining reviews. With no reviews left both go to zero.
// The average is rounded to two decimals.
func (s *Service) refreshProductRating(tx *gorm.DB, productID uint) error {
	type aggregate struct {
		Average float64
		Count   int64
	}
	var agg aggregate
	err := tx.Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	rating := math.Round(agg.Average*100) / 100
	if agg.Count == 0 {
		rating = 0
	}

	err = tx.Model(&catalog.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":            rating,
			"number_of_reviews": agg.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}
	return nil
}

// hasDeliveredPurchase reports whether the user has received the product
// in a delivered order
func (s *Service) hasDeliveredPurchase(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&order.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, order.StatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return count > 0, nil
}

func (s *Service) getReview(reviewID uint) (*Review, error) {
	var review Review
	if err := s.db.Preload("User").First(&review, reviewID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Review not found")
	}
	return &review, nil
}
