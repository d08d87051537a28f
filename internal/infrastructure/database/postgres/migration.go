// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/commerce-core/internal/domain/account"
	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/identity"
	"github.com/your-org/commerce-core/internal/domain/order"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// Account domain
		&account.Account{},

		// Cart domain
		&cart.Cart{},
		&cart.CartItem{},

		// Order domain
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Account indexes
		"CREATE INDEX IF NOT EXISTS idx_accounts_email_active ON accounts(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_carts_session_status ON carts(session_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_carts_customer_status ON carts(customer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_carts_status_expires ON carts(status, expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_status ON orders(customer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email_number ON orders(email, order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminAccount(); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	if err := m.seedTestAccount(); err != nil {
		return fmt.Errorf("failed to seed test account: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedAdminAccount creates the default back-office account holding every
// admin permission
func (m *Migration) seedAdminAccount() error {
	log.Println("👤 Seeding admin account...")

	var existing account.Account
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		log.Printf("⏭️ Admin account already exists with ID: %d", existing.ID)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	permissions := make([]string, len(identity.AllPermissions))
	for i, perm := range identity.AllPermissions {
		permissions[i] = string(perm)
	}

	admin := account.Account{
		Email:        "admin@example.com",
		PasswordHash: string(hashedPassword),
		FirstName:    "Admin",
		LastName:     "User",
		IsActive:     true,
		IsAdmin:      true,
		Permissions:  permissions,
	}

	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	log.Println("✅ Created admin account: admin@example.com (password: admin123)")
	return nil
}

// seedTestAccount creates a customer account for development
func (m *Migration) seedTestAccount() error {
	log.Println("👤 Seeding test account...")

	var existing account.Account
	result := m.db.Where("email = ?", "test1@example.com").First(&existing)
	if result.Error == nil {
		log.Println("⏭️ Test account already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Test1234"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	customer := account.Account{
		Email:        "test1@example.com",
		PasswordHash: string(hashedPassword),
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
		IsAdmin:      false,
	}

	if err := m.db.Create(&customer).Error; err != nil {
		return err
	}

	log.Println("✅ Created test account: test1@example.com (password: Test1234)")
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"order_status_history",
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"accounts",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}

// CleanupTestData removes development seed data, keeping the admin account
func (m *Migration) CleanupTestData() error {
	log.Println("🧹 Cleaning up test data...")

	result := m.db.Where("email = ? AND is_admin = ?", "test1@example.com", false).Delete(&account.Account{})
	log.Printf("🗑️ Removed %d test accounts", result.RowsAffected)

	log.Println("✅ Test data cleanup completed")
	return nil
}
