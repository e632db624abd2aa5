// internal/domain/catalog/service.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=20"`
	CategoryID   uint   `form:"category"`
	Search       string `form:"search"`
	Availability string `form:"availability"`
	Featured     *bool  `form:"featured"`
	SortBy       string `form:"sort_by,default=created_at"`
	SortOrder    string `form:"sort_order,default=desc"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
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

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name             string          `json:"name" binding:"required"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	Price            decimal.Decimal `json:"price" binding:"required"`
	CategoryID       uint            `json:"category_id" binding:"required"`
	ImageURL         string          `json:"image_url"`
	Stock            int             `json:"stock"`
	IsFeatured       bool            `json:"is_featured"`
}

// UpdateProductRequest represents product update data; nil fields are untouched
type UpdateProductRequest struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description"`
	Price            *decimal.Decimal `json:"price"`
	CategoryID       *uint            `json:"category_id"`
	ImageURL         *string          `json:"image_url"`
	Stock            *int             `json:"stock"`
	IsFeatured       *bool            `json:"is_featured"`
	Availability     *Availability    `json:"availability"`
}

// CreateCategoryRequest represents category creation data
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Preload("Category")

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(req.Search)+"%")
	}
	if req.Availability != "" {
		query = query.Where("availability = ?", req.Availability)
	}
	if req.Featured != nil {
		query = query.Where("is_featured = ?", *req.Featured)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductListResponse{
		Products:   products,
		Pagination: buildPagination(req.Page, req.Limit, total),
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	if err := s.db.Preload("Category").First(&product, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "Product not found")
	}
	return &product, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.Validation("Price must be greater than zero")
	}
	if req.Stock < 0 {
		return nil, apperrors.Validation("Stock cannot be negative")
	}

	var category Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		return nil, apperrors.FromDB(err, "Category not found")
	}

	_, availability := ApplyStockDelta(req.Stock, 0)
	product := Product{
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		CategoryID:       req.CategoryID,
		ImageURL:         req.ImageURL,
		Stock:            req.Stock,
		IsFeatured:       req.IsFeatured,
		Availability:     availability,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.GetProduct(product.ID)
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "Product not found")
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.Price != nil {
		if req.Price.LessThanOrEqual(decimal.Zero) {
			return nil, apperrors.Validation("Price must be greater than zero")
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		var category Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			return nil, apperrors.FromDB(err, "Category not found")
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperrors.Validation("Stock cannot be negative")
		}
		updates["stock"] = *req.Stock
		// An explicit availability in the same request wins over the derived one.
		if req.Availability == nil && product.Availability != AvailabilityDiscontinued {
			_, availability := ApplyStockDelta(*req.Stock, 0)
			updates["availability"] = availability
		}
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.Availability != nil {
		if !isValidAvailability(*req.Availability) {
			return nil, apperrors.Validation("Invalid availability value")
		}
		updates["availability"] = *req.Availability
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(id)
}

// DeleteProduct removes a product. Products referenced by order items cannot
// be deleted: order history keeps its snapshot rows pointing at the product.
func (s *Service) DeleteProduct(id uint) error {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		return apperrors.FromDB(err, "Product not found")
	}

	var referencing int64
	if err := s.db.Table("order_items").Where("product_id = ?", id).Count(&referencing).Error; err != nil {
		return fmt.Errorf("failed to check order references: %w", err)
	}
	if referencing > 0 {
		return apperrors.Validation("Invalid reference to another table")
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return apperrors.FromDB(err, "Product not found")
	}
	return nil
}

// GetLowStockProducts retrieves products below the low-stock threshold
func (s *Service) GetLowStockProducts(limit int) ([]Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var products []Product
	err := s.db.Preload("Category").
		Where("stock < ?", LowStockThreshold).
		Order("stock ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock products: %w", err)
	}
	return products, nil
}

// CategoryWithCount pairs a category with its product count
type CategoryWithCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

// GetCategories retrieves all categories with product counts
func (s *Service) GetCategories() ([]CategoryWithCount, error) {
	var categories []Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	result := make([]CategoryWithCount, len(categories))
	for i, category := range categories {
		var count int64
		s.db.Model(&Product{}).Where("category_id = ?", category.ID).Count(&count)
		result[i] = CategoryWithCount{Category: category, ProductCount: count}
	}
	return result, nil
}

// GetCategory retrieves a single category by ID
func (s *Service) GetCategory(id uint) (*Category, error) {
	var category Category
	if err := s.db.First(&category, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "Category not found")
	}
	return &category, nil
}

// CreateCategory creates a new category
func (s *Service) CreateCategory(req *CreateCategoryRequest) (*Category, error) {
	category := Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if category.Name == "" {
		return nil, apperrors.Validation("Category name required")
	}

	var existing Category
	if err := s.db.Where("name = ?", category.Name).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("Category already exists")
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, apperrors.FromDB(err, "Category not found")
	}
	return &category, nil
}

// Private helpers

func isValidAvailability(a Availability) bool {
	switch a {
	case AvailabilityInStock, AvailabilityOutOfStock, AvailabilityDiscontinued:
		return true
	}
	return false
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"price":      true,
		"rating":     true,
		"stock":      true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

func buildPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
