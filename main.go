package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"volunteer-hub-system/handlers"
	"volunteer-hub-system/middleware"
	"volunteer-hub-system/models"
	"volunteer-hub-system/services"
	"volunteer-hub-system/utils"
	"volunteer-hub-system/workers"

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
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
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
		&models.Mission{},
		&models.Shift{},
		&models.ParticipationRequest{},
		&models.VolunteerPoint{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Setting{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedCatalog(db); err != nil {
		log.Fatal("failed to seed achievement catalog:", err)
	}

	if os.Getenv("R2_BUCKET_NAME") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize export storage:", err)
		}
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set — CSV export uploads disabled")
	}

	pointsService := services.NewPointsService(db)
	statsService := services.NewStatsService(db)
	achievementService := services.NewAchievementService(db)
	leaderboardService := services.NewLeaderboardService(db)
	missionService := services.NewMissionService(db)
	participationService := services.NewParticipationService(db, pointsService)

	// --- Profile sync worker config ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("VOLUNTEER_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("VOLUNTEER_SERVICE_TOKEN environment variable not set")
	}

	syncWorker := workers.NewVolunteerProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting Volunteer Profile Sync Worker...")
		syncWorker.Start(ctx)
	}()

	missionService.StartMissionScheduler()
	pointsService.StartReconciliationScheduler()

	// Per-request settings cache for award-constant overrides.
	app.Use(middleware.SettingsMiddleware(db))

	handlers.SetupMissionRoutes(app, missionService)
	handlers.SetupParticipationRoutes(app, participationService)
	handlers.SetupGamificationRoutes(app, pointsService, statsService, achievementService, leaderboardService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Volunteer Profile Sync Worker running")
	log.Println("✅ Mission auto-close and nightly reconciliation schedulers running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
