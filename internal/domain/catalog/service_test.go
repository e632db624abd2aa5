// internal/domain/catalog/service_test.go
package catalog

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// orderItemRow mirrors the order items table enough for reference checks.
type orderItemRow struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint
	ProductID uint
}

func (orderItemRow) TableName() string { return "order_items" }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&Category{}, &Product{}, &orderItemRow{})
	require.NoError(t, err)

	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *Category {
	t.Helper()

	category := Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func TestApplyStockDelta(t *testing.T) {
	cases := []struct {
		name      string
		stock     int
		delta     int
		wantStock int
		wantLabel Availability
	}{
		{"sale leaves stock", 5, -2, 3, AvailabilityInStock},
		{"sale empties stock", 2, -2, 0, AvailabilityOutOfStock},
		{"restore revives", 0, 3, 3, AvailabilityInStock},
		{"no movement in stock", 4, 0, 4, AvailabilityInStock},
		{"no movement empty", 0, 0, 0, AvailabilityOutOfStock},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stock, label := ApplyStockDelta(tc.stock, tc.delta)
			assert.Equal(t, tc.wantStock, stock)
			assert.Equal(t, tc.wantLabel, label)
		})
	}
}

func TestCreateProduct_DerivesAvailability(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	category := seedCategory(t, db, "Toys")

	inStock, err := svc.CreateProduct(&CreateProductRequest{
		Name:       "Blocks",
		Price:      decimal.RequireFromString("10.00"),
		CategoryID: category.ID,
		Stock:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, AvailabilityInStock, inStock.Availability)

	empty, err := svc.CreateProduct(&CreateProductRequest{
		Name:       "Sold Out Set",
		Price:      decimal.RequireFromString("10.00"),
		CategoryID: category.ID,
		Stock:      0,
	})
	require.NoError(t, err)
	assert.Equal(t, AvailabilityOutOfStock, empty.Availability)
}

func TestCreateProduct_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	category := seedCategory(t, db, "Toys")

	_, err := svc.CreateProduct(&CreateProductRequest{
		Name:       "Freebie",
		Price:      decimal.Zero,
		CategoryID: category.ID,
	})
	require.Error(t, err)
	assert.Equal(t, "Price must be greater than zero", err.Error())

	_, err = svc.CreateProduct(&CreateProductRequest{
		Name:       "Ghost",
		Price:      decimal.RequireFromString("5.00"),
		CategoryID: 999,
	})
	require.Error(t, err)
	assert.Equal(t, "Category not found", err.Error())

	_, err = svc.CreateProduct(&CreateProductRequest{
		Name:       "Negative",
		Price:      decimal.RequireFromString("5.00"),
		CategoryID: category.ID,
		Stock:      -1,
	})
	require.Error(t, err)
	assert.Equal(t, "Stock cannot be negative", err.Error())
}

func TestUpdateProduct_StockRederivesAvailability(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	category := seedCategory(t, db, "Toys")
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:       "Blocks",
		Price:      decimal.RequireFromString("10.00"),
		CategoryID: category.ID,
		Stock:      5,
	})
	require.NoError(t, err)

	zero := 0
	updated, err := svc.UpdateProduct(product.ID, &UpdateProductRequest{Stock: &zero})
	require.NoError(t, err)
	assert.Equal(t, AvailabilityOutOfStock, updated.Availability)

	three := 3
	updated, err = svc.UpdateProduct(product.ID, &UpdateProductRequest{Stock: &three})
	require.NoError(t, err)
	assert.Equal(t, AvailabilityInStock, updated.Availability)
}

func TestUpdateProduct_DiscontinuedSticks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	category := seedCategory(t, db, "Toys")
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:       "Retired Set",
		Price:      decimal.RequireFromString("10.00"),
		CategoryID: category.ID,
		Stock:      5,
	})
	require.NoError(t, err)

	discontinued := AvailabilityDiscontinued
	_, err = svc.UpdateProduct(product.ID, &UpdateProductRequest{Availability: &discontinued})
	require.NoError(t, err)

	// A stock change alone does not revive a discontinued product.
	ten := 10
	updated, err := svc.UpdateProduct(product.ID, &UpdateProductRequest{Stock: &ten})
	require.NoError(t, err)
	assert.Equal(t, AvailabilityDiscontinued, updated.Availability)
}

func TestDeleteProduct_BlockedByOrderReferences(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	category := seedCategory(t, db, "Toys")
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:       "Ordered Once",
		Price:      decimal.RequireFromString("10.00"),
		CategoryID: category.ID,
		Stock:      5,
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&orderItemRow{OrderID: 1, ProductID: product.ID}).Error)

	err = svc.DeleteProduct(product.ID)
	require.Error(t, err)
	assert.Equal(t, "Invalid reference to another table", err.Error())
	assert.Equal(t, 400, apperrors.StatusCode(err))

	// Still retrievable.
	_, err = svc.GetProduct(product.ID)
	require.NoError(t, err)
}

func TestDeleteProduct_Unreferenced(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	category := seedCategory(t, db, "Toys")
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:       "Unsold",
		Price:      decimal.RequireFromString("10.00"),
		CategoryID: category.ID,
		Stock:      5,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(product.ID))

	_, err = svc.GetProduct(product.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}

func TestGetProducts_Filters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	toys := seedCategory(t, db, "Toys")
	games := seedCategory(t, db, "Games")

	products := []Product{
		{Name: "Wooden Train", Price: decimal.RequireFromString("20.00"), CategoryID: toys.ID, Stock: 5, Availability: AvailabilityInStock, IsFeatured: true},
		{Name: "Chess Set", Price: decimal.RequireFromString("15.00"), CategoryID: games.ID, Stock: 2, Availability: AvailabilityInStock},
		{Name: "Toy Drum", Price: decimal.RequireFromString("12.00"), CategoryID: toys.ID, Stock: 0, Availability: AvailabilityOutOfStock},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	byCategory, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, CategoryID: toys.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory.Products, 2)

	bySearch, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, Search: "toy"})
	require.NoError(t, err)
	require.Len(t, bySearch.Products, 1)
	assert.Equal(t, "Toy Drum", bySearch.Products[0].Name)

	featured := true
	byFeatured, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, Featured: &featured})
	require.NoError(t, err)
	require.Len(t, byFeatured.Products, 1)
	assert.Equal(t, "Wooden Train", byFeatured.Products[0].Name)

	byAvailability, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, Availability: string(AvailabilityOutOfStock)})
	require.NoError(t, err)
	require.Len(t, byAvailability.Products, 1)
	assert.Equal(t, "Toy Drum", byAvailability.Products[0].Name)
}

func TestGetLowStockProducts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	category := seedCategory(t, db, "Toys")
	products := []Product{
		{Name: "Nearly Gone", Price: decimal.RequireFromString("5.00"), CategoryID: category.ID, Stock: 1, Availability: AvailabilityInStock},
		{Name: "Well Stocked", Price: decimal.RequireFromString("5.00"), CategoryID: category.ID, Stock: 50, Availability: AvailabilityInStock},
		{Name: "At Threshold", Price: decimal.RequireFromString("5.00"), CategoryID: category.ID, Stock: LowStockThreshold, Availability: AvailabilityInStock},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	low, err := svc.GetLowStockProducts(20)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Nearly Gone", low[0].Name)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})

	_, err := svc.CreateCategory(&CreateCategoryRequest{Name: "Toys"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(&CreateCategoryRequest{Name: "Toys"})
	require.Error(t, err)
	assert.Equal(t, "Category already exists", err.Error())
}
