package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-exchange-system/handlers"
	"support-exchange-system/middleware"
	"support-exchange-system/models"
	"support-exchange-system/services"
	"support-exchange-system/utils"
	"support-exchange-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.SupportItem{},
		&models.Interaction{},
		&models.AdminAction{},
		&models.Coupon{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	cfg := services.LoadConfig()
	notifier := services.NewGatewayNotifier()

	ledgerService := services.NewLedgerService(db)
	accountService := services.NewAccountService(db, ledgerService, cfg, notifier)
	catalogService := services.NewCatalogService(db, ledgerService, cfg, notifier)
	interactionService := services.NewInteractionService(db, ledgerService, cfg, notifier)
	adminService := services.NewAdminService(db, ledgerService, cfg, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Periodic auto-accept of expired pending claims/proposals
	sweeper := services.NewExpirySweeper(db, interactionService, adminService, cfg)
	sweeper.Start()

	// Optional: ledger audit snapshots to R2-compatible storage
	if utils.R2Configured() {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		exportClient := workers.NewLedgerExportClient(db)
		go workers.PollLedgerExports(ctx, exportClient, 1*time.Hour)
		log.Println("✅ Ledger audit export running (hourly)")
	} else {
		log.Println("⚠️  R2 not configured — ledger audit export disabled")
	}

	handlers.SetupAccountRoutes(app, accountService, ledgerService)
	handlers.SetupSupportRoutes(app, accountService, catalogService, interactionService)
	handlers.SetupAdminRoutes(app, accountService, adminService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ Expiry sweeper running (every %s)", cfg.SweepInterval)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
