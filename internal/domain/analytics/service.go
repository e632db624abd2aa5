// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/domain/order"
	"github.com/your-org/toycart-backend/internal/domain/user"
	"github.com/your-org/toycart-backend/internal/infrastructure/database/redis"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

// Service handles admin reporting and analytics
type Service struct {
	db     *gorm.DB
	cache  *redis.Client
	config *config.Config
}

// NewService creates a new analytics service. The cache client may be nil;
// stats are then computed on every request.
func NewService(db *gorm.DB, cache *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		cache:  cache,
		config: cfg,
	}
}

// DashboardStats represents the admin dashboard summary
type DashboardStats struct {
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	TotalOrders    int64            `json:"total_orders"`
	TotalCustomers int64            `json:"total_customers"`
	TotalProducts  int64            `json:"total_products"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	LowStockCount  int64            `json:"low_stock_count"`
	RecentOrders   []order.Order    `json:"recent_orders"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// CustomerSummary represents a customer row in the admin listing
type CustomerSummary struct {
	user.User
	OrderCount int64           `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// CustomerListRequest represents customer list query parameters
type CustomerListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
}

// CustomerListResponse represents a paginated customer listing
type CustomerListResponse struct {
	Customers []CustomerSummary `json:"customers"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
}

// SalesReportRequest represents the date range of a sales report
type SalesReportRequest struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// SalesReport summarizes delivered orders over a date range
type SalesReport struct {
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	OrderCount      int64           `json:"order_count"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	AverageOrderVal decimal.Decimal `json:"average_order_value"`
}

// GetDashboardStats returns the dashboard summary, served from cache when
// a fresh copy is available
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.computeDashboardStats()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Best effort; a cache failure never fails the request.
		_ = s.cache.SetJSON(ctx, dashboardCacheKey, stats, dashboardCacheTTL)
	}
	return stats, nil
}

func (s *Service) computeDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus: make(map[string]int64),
		GeneratedAt:    time.Now(),
	}

	// Revenue counts delivered orders only.
	var revenue decimal.NullDecimal
	err := s.db.Model(&order.Order{}).
		Where("status = ?", order.StatusDelivered).
		Select("SUM(total_amount)").
		Scan(&revenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	stats.TotalRevenue = decimal.Zero
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}

	if err := s.db.Model(&order.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	err = s.db.Model(&user.User{}).Where("role = ?", user.RoleCustomer).Count(&stats.TotalCustomers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := s.db.Model(&catalog.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	err = s.db.Model(&catalog.Product{}).
		Where("stock < ?", catalog.LowStockThreshold).
		Count(&stats.LowStockCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err = s.db.Model(&order.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group orders by status: %w", err)
	}
	for _, c := range counts {
		stats.OrdersByStatus[c.Status] = c.Count
	}

	err = s.db.Preload("Items").Order("created_at DESC").Limit(10).Find(&stats.RecentOrders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	return stats, nil
}

// GetCustomers retrieves customers with order counts and lifetime spend
func (s *Service) GetCustomers(req *CustomerListRequest) (*CustomerListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&user.User{}).Where("role = ?", user.RoleCustomer)
	if req.Search != "" {
		term := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	var users []user.User
	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}

	customers := make([]CustomerSummary, len(users))
	for i, u := range users {
		summary := CustomerSummary{User: u, TotalSpent: decimal.Zero}

		s.db.Model(&order.Order{}).Where("user_id = ?", u.ID).Count(&summary.OrderCount)

		var spent decimal.NullDecimal
		s.db.Model(&order.Order{}).
			Where("user_id = ? AND status = ?", u.ID, order.StatusDelivered).
			Select("SUM(total_amount)").
			Scan(&spent)
		if spent.Valid {
			summary.TotalSpent = spent.Decimal
		}

		customers[i] = summary
	}

	return &CustomerListResponse{
		Customers: customers,
		Total:     total,
		Page:      req.Page,
		Limit:     req.Limit,
	}, nil
}

// GetCustomer retrieves a single customer with their order history
func (s *Service) GetCustomer(customerID uint) (*CustomerSummary, []order.Order, error) {
	var u user.User
	if err := s.db.First(&u, customerID).Error; err != nil {
		return nil, nil, apperrors.FromDB(err, "Customer not found")
	}

	summary := CustomerSummary{User: u, TotalSpent: decimal.Zero}
	s.db.Model(&order.Order{}).Where("user_id = ?", u.ID).Count(&summary.OrderCount)

	var spent decimal.NullDecimal
	s.db.Model(&order.Order{}).
		Where("user_id = ? AND status = ?", u.ID, order.StatusDelivered).
		Select("SUM(total_amount)").
		Scan(&spent)
	if spent.Valid {
		summary.TotalSpent = spent.Decimal
	}

	var orders []order.Order
	err := s.db.Preload("Items").
		Where("user_id = ?", u.ID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load customer orders: %w", err)
	}

	return &summary, orders, nil
}

// GetSalesReport summarizes delivered orders inside the date range,
// inclusive on both ends. Dates are YYYY-MM-DD.
func (s *Service) GetSalesReport(req *SalesReportRequest) (*SalesReport, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, apperrors.Validation("Invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, apperrors.Validation("Invalid end date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, apperrors.Validation("End date must not be before start date")
	}
	endExclusive := end.AddDate(0, 0, 1)

	query := s.db.Model(&order.Order{}).
		Where("status = ? AND created_at >= ? AND created_at < ?",
			order.StatusDelivered, start, endExclusive)

	report := &SalesReport{
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalSales:      decimal.Zero,
		AverageOrderVal: decimal.Zero,
	}

	if err := query.Count(&report.OrderCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count delivered orders: %w", err)
	}
	if report.OrderCount == 0 {
		return report, nil
	}

	var sum decimal.NullDecimal
	if err := query.Select("SUM(total_amount)").Scan(&sum).Error; err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}
	if sum.Valid {
		report.TotalSales = sum.Decimal
	}
	report.AverageOrderVal = report.TotalSales.
		Div(decimal.NewFromInt(report.OrderCount)).
		Round(2)

	return report, nil
}
