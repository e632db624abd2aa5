// internal/domain/analytics/service_test.go
package analytics

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/domain/order"
	"github.com/your-org/toycart-backend/internal/domain/user"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&user.User{},
		&catalog.Category{},
		&catalog.Product{},
		&order.Order{},
		&order.OrderItem{},
	)
	require.NoError(t, err)

	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, number, status, amount string) *order.Order {
	t.Helper()

	o := order.Order{
		OrderNumber: number,
		UserID:      userID,
		TotalAmount: decimal.RequireFromString(amount),
		Status:      status,
	}
	require.NoError(t, db.Create(&o).Error)
	return &o
}

func seedCustomer(t *testing.T, db *gorm.DB, name, email string) *user.User {
	t.Helper()

	u := user.User{Name: name, Email: email, Password: "hashed", Role: user.RoleCustomer}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func TestGetDashboardStats_EmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, &config.Config{})

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.TotalCustomers)
	assert.Zero(t, stats.TotalProducts)
	assert.Empty(t, stats.RecentOrders)
}

func TestGetDashboardStats_RevenueCountsDeliveredOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, &config.Config{})

	buyer := seedCustomer(t, db, "Buyer", "buyer@x.com")
	seedOrder(t, db, buyer.ID, "ORD-1", order.StatusDelivered, "50.00")
	seedOrder(t, db, buyer.ID, "ORD-2", order.StatusDelivered, "25.50")
	seedOrder(t, db, buyer.ID, "ORD-3", order.StatusPending, "100.00")
	seedOrder(t, db, buyer.ID, "ORD-4", order.StatusCancelled, "42.00")

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "75.50", stats.TotalRevenue.StringFixed(2))
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(2), stats.OrdersByStatus[order.StatusDelivered])
	assert.Equal(t, int64(1), stats.OrdersByStatus[order.StatusPending])
}

func TestGetCustomers_SearchAndSpend(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, &config.Config{})

	alice := seedCustomer(t, db, "Alice", "alice@x.com")
	seedCustomer(t, db, "Bob", "bob@x.com")

	// Admins are not listed as customers.
	admin := user.User{Name: "Root", Email: "root@x.com", Password: "hashed", Role: user.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	seedOrder(t, db, alice.ID, "ORD-1", order.StatusDelivered, "30.00")
	seedOrder(t, db, alice.ID, "ORD-2", order.StatusPending, "99.00")

	all, err := svc.GetCustomers(&CustomerListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	found, err := svc.GetCustomers(&CustomerListRequest{Search: "alice"})
	require.NoError(t, err)
	require.Len(t, found.Customers, 1)
	assert.Equal(t, int64(2), found.Customers[0].OrderCount)
	// Lifetime spend counts delivered orders only.
	assert.Equal(t, "30.00", found.Customers[0].TotalSpent.StringFixed(2))
}

func TestGetCustomer_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, &config.Config{})

	_, _, err := svc.GetCustomer(404)
	require.Error(t, err)
	assert.Equal(t, "Customer not found", err.Error())
}

func TestGetSalesReport(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, &config.Config{})

	buyer := seedCustomer(t, db, "Buyer", "buyer@x.com")
	seedOrder(t, db, buyer.ID, "ORD-1", order.StatusDelivered, "40.00")
	seedOrder(t, db, buyer.ID, "ORD-2", order.StatusDelivered, "20.00")
	seedOrder(t, db, buyer.ID, "ORD-3", order.StatusPending, "500.00")

	report, err := svc.GetSalesReport(&SalesReportRequest{
		StartDate: "2000-01-01",
		EndDate:   "2100-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.OrderCount)
	assert.Equal(t, "60.00", report.TotalSales.StringFixed(2))
	assert.Equal(t, "30.00", report.AverageOrderVal.StringFixed(2))
}

func TestGetSalesReport_EmptyRange(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, &config.Config{})

	report, err := svc.GetSalesReport(&SalesReportRequest{
		StartDate: "2000-01-01",
		EndDate:   "2000-01-02",
	})
	require.NoError(t, err)

	assert.Zero(t, report.OrderCount)
	assert.True(t, report.TotalSales.IsZero())
	assert.True(t, report.AverageOrderVal.IsZero())
}

func TestGetSalesReport_InvalidDates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, &config.Config{})

	_, err := svc.GetSalesReport(&SalesReportRequest{StartDate: "bogus", EndDate: "2024-01-01"})
	require.Error(t, err)

	_, err = svc.GetSalesReport(&SalesReportRequest{StartDate: "2024-02-01", EndDate: "2024-01-01"})
	require.Error(t, err)
	assert.Equal(t, "End date must not be before start date", err.Error())
}
