// internal/domain/order/service_test.go
package order

import (
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/cart"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/domain/user"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
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
		&cart.CartItem{},
		&Order{},
		&OrderItem{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *catalog.Product {
	t.Helper()

	category := catalog.Category{Name: "Toys " + name}
	require.NoError(t, db.Create(&category).Error)

	product := catalog.Product{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		CategoryID:   category.ID,
		Stock:        stock,
		Availability: catalog.AvailabilityInStock,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) *user.User {
	t.Helper()

	u := user.User{Name: "Test User", Email: email, Password: "hashed", Role: user.RoleCustomer}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func addToCart(t *testing.T, db *gorm.DB, userID uint, product *catalog.Product, quantity int) {
	t.Helper()

	item := cart.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
	}
	require.NoError(t, db.Create(&item).Error)
}

func checkoutRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		DeliveryAddress: "1 Main St",
		DeliveryCity:    "Springfield",
		DeliveryState:   "IL",
		DeliveryZipcode: "12345",
		DeliveryPhone:   "555-0100",
	}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Blocks", "10.00", 5)
	addToCart(t, db, customer.ID, product, 2)

	created, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, "20.00", created.TotalAmount.StringFixed(2))
	assert.True(t, strings.HasPrefix(created.OrderNumber, "ORD-"))
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Blocks", created.Items[0].ProductName)
	assert.Equal(t, 2, created.Items[0].Quantity)

	var reloaded catalog.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)
	assert.Equal(t, catalog.AvailabilityInStock, reloaded.Availability)

	// Checkout empties the cart.
	var remaining int64
	db.Model(&cart.CartItem{}).Where("user_id = ?", customer.ID).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestCreateOrder_UsesLivePrice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Robot", "10.00", 5)
	addToCart(t, db, customer.ID, product, 1)

	// Price changes after the item was carted.
	require.NoError(t, db.Model(&catalog.Product{}).
		Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("12.50")).Error)

	created, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "12.50", created.TotalAmount.StringFixed(2))
	assert.Equal(t, "12.50", created.Items[0].Price.StringFixed(2))
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")

	_, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, "Cart is empty", err.Error())
}

func TestCreateOrder_MissingDeliveryInfo(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	req := checkoutRequest()
	req.DeliveryPhone = "  "

	_, err := svc.CreateOrder(1, req)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
	assert.Equal(t, "Please fill all delivery details", err.Error())
}

func TestCreateOrder_BlankStateRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Top", "4.00", 5)
	addToCart(t, db, customer.ID, product, 1)

	req := checkoutRequest()
	req.DeliveryState = "  "

	_, err := svc.CreateOrder(customer.ID, req)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	var orderCount int64
	db.Model(&Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Puzzle", "8.00", 1)
	addToCart(t, db, customer.ID, product, 3)

	_, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, "Puzzle has insufficient stock", err.Error())

	// Nothing committed: stock untouched, no order, cart intact.
	var reloaded catalog.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 1, reloaded.Stock)

	var orderCount int64
	db.Model(&Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)

	var cartCount int64
	db.Model(&cart.CartItem{}).Where("user_id = ?", customer.ID).Count(&cartCount)
	assert.Equal(t, int64(1), cartCount)
}

func TestCreateOrder_LastUnitGoesToOneBuyer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	first := seedCustomer(t, db, "first@example.com")
	second := seedCustomer(t, db, "second@example.com")
	product := seedProduct(t, db, "Limited Figure", "30.00", 1)
	addToCart(t, db, first.ID, product, 1)
	addToCart(t, db, second.ID, product, 1)

	_, err := svc.CreateOrder(first.ID, checkoutRequest())
	require.NoError(t, err)

	_, err = svc.CreateOrder(second.ID, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, "Limited Figure has insufficient stock", err.Error())

	var reloaded catalog.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 0, reloaded.Stock)
	assert.Equal(t, catalog.AvailabilityOutOfStock, reloaded.Availability)
}

func TestTakeStock_ConditionalDecrement(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	product := seedProduct(t, db, "Kite", "5.00", 2)

	err := svc.takeStock(db, product.ID, product.Name, 3)
	require.Error(t, err)
	assert.Equal(t, "Kite has insufficient stock", err.Error())

	require.NoError(t, svc.takeStock(db, product.ID, product.Name, 2))

	var reloaded catalog.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 0, reloaded.Stock)
	assert.Equal(t, catalog.AvailabilityOutOfStock, reloaded.Availability)
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Train Set", "25.00", 3)
	addToCart(t, db, customer.ID, product, 3)

	created, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.NoError(t, err)

	var afterCheckout catalog.Product
	require.NoError(t, db.First(&afterCheckout, product.ID).Error)
	assert.Equal(t, 0, afterCheckout.Stock)
	assert.Equal(t, catalog.AvailabilityOutOfStock, afterCheckout.Availability)

	cancelled, err := svc.CancelOrder(created.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	var restored catalog.Product
	require.NoError(t, db.First(&restored, product.ID).Error)
	assert.Equal(t, 3, restored.Stock)
	assert.Equal(t, catalog.AvailabilityInStock, restored.Availability)
}

func TestCancelOrder_OnlyPending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Doll", "15.00", 4)
	addToCart(t, db, customer.ID, product, 1)

	created, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(created.ID, &UpdateStatusRequest{Status: StatusShipped})
	require.NoError(t, err)

	_, err = svc.CancelOrder(created.ID, customer.ID)
	require.Error(t, err)
	assert.Equal(t, "Can only cancel pending orders", err.Error())
}

func TestCancelOrder_WrongOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	owner := seedCustomer(t, db, "owner@example.com")
	other := seedCustomer(t, db, "other@example.com")
	product := seedProduct(t, db, "Yo-yo", "3.00", 10)
	addToCart(t, db, owner.ID, product, 1)

	created, err := svc.CreateOrder(owner.ID, checkoutRequest())
	require.NoError(t, err)

	_, err = svc.CancelOrder(created.ID, other.ID)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))

	// The order stays pending and untouched.
	var reloaded Order
	require.NoError(t, db.First(&reloaded, created.ID).Error)
	assert.Equal(t, StatusPending, reloaded.Status)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	_, err := svc.UpdateStatus(1, &UpdateStatusRequest{Status: "teleported"})
	require.Error(t, err)
	assert.Equal(t, "Invalid order status", err.Error())
}

func TestUpdateStatus_DeliveredSetsDateAndPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Ball", "2.00", 6)
	addToCart(t, db, customer.ID, product, 2)

	created, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(created.ID, &UpdateStatusRequest{Status: StatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, updated.Status)
	assert.Equal(t, PaymentCompleted, updated.PaymentStatus)
	require.NotNil(t, updated.DeliveryDate)
}

func TestGetOrder_Visibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	owner := seedCustomer(t, db, "owner@example.com")
	other := seedCustomer(t, db, "other@example.com")
	product := seedProduct(t, db, "Car", "9.99", 5)
	addToCart(t, db, owner.ID, product, 1)

	created, err := svc.CreateOrder(owner.ID, checkoutRequest())
	require.NoError(t, err)

	_, err = svc.GetOrder(created.ID, owner.ID, false)
	require.NoError(t, err)

	_, err = svc.GetOrder(created.ID, other.ID, false)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))

	_, err = svc.GetOrder(created.ID, other.ID, true)
	require.NoError(t, err)
}

func TestGetUserOrders_FiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig())

	customer := seedCustomer(t, db, "buyer@example.com")
	product := seedProduct(t, db, "Marbles", "1.00", 20)

	addToCart(t, db, customer.ID, product, 1)
	first, err := svc.CreateOrder(customer.ID, checkoutRequest())
	require.NoError(t, err)

	// Order numbers carry a millisecond timestamp; keep them distinct.
	time.Sleep(2 * time.Millisecond)

	addToCart(t, db, customer.ID, product, 1)
	_, err = svc.CreateOrder(customer.ID, checkoutRequest())
	require.NoError(t, err)

	_, err = svc.CancelOrder(first.ID, customer.ID)
	require.NoError(t, err)

	response, err := svc.GetUserOrders(customer.ID, &OrderListRequest{Status: StatusPending})
	require.NoError(t, err)
	require.Len(t, response.Orders, 1)
	assert.Equal(t, StatusPending, response.Orders[0].Status)
	assert.Equal(t, int64(1), response.Pagination.Total)
}
