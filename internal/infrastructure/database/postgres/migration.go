// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/toycart-backend/internal/config"
	"github.com/your-org/toycart-backend/internal/domain/cart"
	"github.com/your-org/toycart-backend/internal/domain/catalog"
	"github.com/your-org/toycart-backend/internal/domain/order"
	"github.com/your-org/toycart-backend/internal/domain/review"
	"github.com/your-org/toycart-backend/internal/domain/user"
	"github.com/your-org/toycart-backend/internal/domain/wishlist"
	"github.com/your-org/toycart-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config) *Migration {
	return &Migration{
		db:  db,
		cfg: cfg,
	}
}

// Models returns all models in dependency order. Tests reuse this list
// to build schemas against their own database.
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&catalog.Category{},
		&catalog.Product{},

		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},

		&review.Review{},

		&wishlist.WishlistItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	for _, model := range Models() {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_products_availability ON products(availability)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured)",
		"CREATE INDEX IF NOT EXISTS idx_products_stock ON products(stock)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_helpful ON reviews(product_id, helpful_count DESC)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
		}
	}
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	categories := []catalog.Category{
		{Name: "Action Figures", Description: "Action figures and collectibles"},
		{Name: "Building Sets", Description: "Building blocks and construction sets"},
		{Name: "Board Games", Description: "Board games and puzzles"},
		{Name: "Outdoor Toys", Description: "Outdoor and sports toys"},
		{Name: "Educational", Description: "Learning and STEM toys"},
	}

	for _, category := range categories {
		var existing catalog.Category
		err := m.db.Where("name = ?", category.Name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// seedAdminUser creates the default admin account if none exists
func (m *Migration) seedAdminUser() error {
	var count int64
	if err := m.db.Model(&user.User{}).Where("role = ?", user.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	passwordManager := auth.NewPasswordManager(m.cfg)
	hashed, err := passwordManager.HashPassword("admin123")
	if err != nil {
		return err
	}

	admin := user.User{
		Name:     "Admin",
		Email:    "admin@toycart.local",
		Password: hashed,
		Role:     user.RoleAdmin,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("👤 Default admin user created: admin@toycart.local")
	return nil
}
