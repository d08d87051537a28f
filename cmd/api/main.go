// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/account"
	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/catalog"
	"github.com/your-org/commerce-core/internal/domain/checkout"
	"github.com/your-org/commerce-core/internal/domain/identity"
	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/domain/payment"
	"github.com/your-org/commerce-core/internal/domain/session"
	"github.com/your-org/commerce-core/internal/infrastructure/database/postgres"
	"github.com/your-org/commerce-core/internal/infrastructure/database/redis"
	"github.com/your-org/commerce-core/internal/interfaces/http"
	"github.com/your-org/commerce-core/internal/interfaces/http/routes"
	"github.com/your-org/commerce-core/internal/pkg/auth"
	"github.com/your-org/commerce-core/internal/pkg/invoice"
	"github.com/your-org/commerce-core/internal/pkg/logger"
	"github.com/your-org/commerce-core/internal/pkg/notification"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	appLogger := logger.New(cfg)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Health check
	if err := db.Health(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.Printf("Warning: Data seeding failed: %v", err)
		}
		migration.GetTableInfo()
	}

	// Catalog. Product data is owned by an upstream system; this binary
	// ships with a static table until the live adapter is plugged in.
	catalogSvc := buildCatalog()

	// Cart domain
	cartRepo := cart.NewGormRepository(db.GetDB())
	carts := cart.NewService(cartRepo, catalogSvc, cfg, appLogger)

	// Order domain
	orderRepo := order.NewGormRepository(db.GetDB())
	orders := order.NewService(orderRepo, appLogger)
	sequence := order.NewRedisSequence(redisClient.GetClient(), cfg.Order.NumberPrefix)
	claims := order.NewRedisClaimStore(redisClient.GetClient())
	materializer := order.NewMaterializer(orderRepo, sequence, claims, cfg, appLogger)

	// Payment gateway and order notifications
	gateway := payment.NewHTTPGateway(cfg, appLogger)
	notifier := notification.NewAsyncNotifier(notification.NewLogNotifier(appLogger), appLogger)

	// Checkout domain
	checkoutStore := checkout.NewRedisStore(redisClient.GetClient())
	checkouts := checkout.NewService(checkoutStore, carts, catalogSvc, gateway, materializer, notifier, cfg, appLogger)

	// Sessions and identity
	sessionStore := session.NewRedisStore(redisClient.GetClient())
	sessions := session.NewBinder(sessionStore, cfg.Session.TTL)
	resolver := identity.NewResolver(auth.NewJWTManager(cfg), sessions)

	// Account domain
	accountRepo := account.NewGormRepository(db.GetDB())
	accounts := account.NewService(accountRepo, carts, orders, claims, cfg, appLogger)

	// Invoice rendering
	invoices := invoice.NewService(cfg)

	log.Println("✅ All systems operational!")

	// Background cart sweeper
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go carts.RunSweeper(sweepCtx)

	// Create and start HTTP server
	server := http.NewServer(cfg, db.GetDB(), redisClient.GetClient(), &routes.Services{
		Accounts:  accounts,
		Carts:     carts,
		Checkouts: checkouts,
		Orders:    orders,
		Invoices:  invoices,
		Resolver:  resolver,
		Sessions:  sessions,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	stopSweeper()

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	// Flush queued order confirmations before exit
	notifier.Close()

	log.Println("✅ Server shutdown completed")
}

// buildCatalog returns the development product table. Prices are in
// cents.
func buildCatalog() catalog.Service {
	variant := func(id uint) *uint { return &id }

	return catalog.NewStaticCatalog(
		catalog.Product{ProductID: 1, Name: "Trail Running Shoes", SKU: "SHOE-TRAIL-01", UnitPrice: 7999, WeightGrams: 620, MaxPerLine: 10, Active: true},
		catalog.Product{ProductID: 2, Name: "Wool Hiking Socks", SKU: "SOCK-WOOL-01", UnitPrice: 1299, WeightGrams: 90, MaxPerLine: 10, Active: true},
		catalog.Product{ProductID: 3, Name: "Insulated Water Bottle", SKU: "BOTTLE-INS-01", UnitPrice: 2499, WeightGrams: 380, MaxPerLine: 10, Active: true},
		catalog.Product{ProductID: 4, VariantID: variant(1), Name: "Packable Rain Jacket (M)", SKU: "JKT-RAIN-M", UnitPrice: 8999, WeightGrams: 310, MaxPerLine: 5, Active: true},
		catalog.Product{ProductID: 4, VariantID: variant(2), Name: "Packable Rain Jacket (L)", SKU: "JKT-RAIN-L", UnitPrice: 8999, WeightGrams: 330, MaxPerLine: 5, Active: true},
		catalog.Product{ProductID: 5, Name: "Discontinued Headlamp", SKU: "LAMP-HEAD-01", UnitPrice: 3499, WeightGrams: 150, MaxPerLine: 10, Active: false},
	)
}
