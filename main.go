package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"job-tracker-system/handlers"
	"job-tracker-system/middleware"
	"job-tracker-system/models"
	"job-tracker-system/services"
	"job-tracker-system/utils"
	"job-tracker-system/workers"

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
		BodyLimit: 25 * 1024 * 1024, // attachments capped at 25MB
	})

	app.Use(middleware.GatewayAuthMiddleware())

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
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
		&models.User{},
		&models.NetworkContact{},
		&models.Application{},
		&models.ApplicationHistory{},
		&models.PointHistory{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// R2 attachment storage is optional; without it attachments land in the
	// local uploads dir served below.
	if os.Getenv("CLOUDFLARE_ACCOUNT_ID") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		log.Println("✅ R2 attachment storage enabled")
	} else {
		if err := utils.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
		log.Println("⚠️  R2 not configured — attachments stored in ./uploads")
	}

	gamificationService := services.NewGamificationService(db)
	applicationService := services.NewApplicationService(db, gamificationService)
	networkService := services.NewNetworkService(db, gamificationService)
	userService := services.NewUserService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hourly sweep keeping the cached point counters honest against the ledger
	gamificationService.StartReconcileScheduler(1 * time.Hour)

	// Optional: auto-ghost applications with no activity for N days
	if ghostDaysEnv := os.Getenv("GHOST_AFTER_DAYS"); ghostDaysEnv != "" {
		ghostDays, err := strconv.Atoi(ghostDaysEnv)
		if err != nil || ghostDays < 1 {
			log.Fatal("GHOST_AFTER_DAYS must be a positive integer")
		}
		watcher := workers.NewGhostWatcher(db, applicationService, ghostDays)
		go workers.PollStale(ctx, watcher, 6*time.Hour)
	}

	handlers.SetupApplicationRoutes(app, applicationService)
	handlers.SetupNetworkRoutes(app, networkService)
	handlers.SetupUserRoutes(app, userService, gamificationService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5100"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Ledger reconciliation scheduler running (hourly)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
