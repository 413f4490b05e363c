package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crypto-wallet-system/handlers"
	"crypto-wallet-system/middleware"
	"crypto-wallet-system/models"
	"crypto-wallet-system/services"
	"crypto-wallet-system/utils"
	"crypto-wallet-system/workers"

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

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20MB — deposit screenshots
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Printf("⚠️  R2 not initialized (%v) — falling back to local uploads", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.WalletUser{},
		&models.TokenConfig{},
		&models.TokenPrice{},
		&models.DepositRequest{},
		&models.Transaction{},
		&models.UserBalance{},
		&models.ReferralEarning{},
		&models.NFTListing{},
		&models.MemeItem{},
		&models.NewsArticle{},
		&models.LeaderboardEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	tokenService := services.NewTokenService(db)
	referralService := services.NewReferralService(db)
	depositService := services.NewDepositService(db, tokenService, referralService)
	balanceService := services.NewBalanceService(db, tokenService)
	userService := services.NewUserService(db)
	marketService := services.NewMarketService(db)
	newsService := services.NewNewsService(db)
	leaderboardService := services.NewLeaderboardService(db)

	// --- External collaborators: identity mirror + price feed ---
	identityServiceURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityServiceURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	priceFeedURL := os.Getenv("PRICE_FEED_URL")
	if priceFeedURL == "" {
		log.Fatal("PRICE_FEED_URL environment variable not set")
	}
	serviceToken := os.Getenv("WALLET_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("WALLET_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userSyncWorker := workers.NewUserSyncWorker(db, identityServiceURL, "/api/v1/public/users", serviceToken, utils.HTTPClient)
	userSyncWorker.Start(ctx)

	priceClient := workers.NewPriceFeedClient(db, priceFeedURL, serviceToken, utils.HTTPClient)
	go workers.PollPrices(ctx, priceClient, 30*time.Second)

	leaderboardService.StartRecomputeScheduler()

	// ✅ Setup routes — enforced Gateway auth, user context under /api
	handlers.SetupWalletRoutes(app, depositService, balanceService, referralService, userService)
	handlers.SetupTokenRoutes(app, tokenService)
	handlers.SetupMarketRoutes(app, marketService, newsService, leaderboardService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ User Sync Worker running")
	log.Println("✅ Price feed polling running (every 30s)")
	log.Println("✅ Leaderboard recompute scheduled (every 5m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
