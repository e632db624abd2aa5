// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/analytics"
	"github.com/your-org/toycart-backend/internal/infrastructure/database/redis"
	"gorm.io/gorm"
)

// AnalyticsHandler handles admin reporting endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	config           *config.Config
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(db *gorm.DB, cache *redis.Client, cfg *config.Config) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analytics.NewService(db, cache, cfg),
		config:           cfg,
	}
}

// GetDashboardStats handles GET /admin/dashboard
func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetCustomers handles GET /admin/customers
func (h *AnalyticsHandler) GetCustomers(c *gin.Context) {
	var req analytics.CustomerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.analyticsService.GetCustomers(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Customers retrieved successfully", response)
}

// GetCustomer handles GET /admin/customers/:id
func (h *AnalyticsHandler) GetCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, orders, err := h.analyticsService.GetCustomer(customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Customer retrieved successfully", gin.H{
		"customer": summary,
		"orders":   orders,
	})
}

// GetSalesReport handles GET /admin/reports/sales
func (h *AnalyticsHandler) GetSalesReport(c *gin.Context) {
	var req analytics.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := h.analyticsService.GetSalesReport(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Sales report generated successfully", report)
}
