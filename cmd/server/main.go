package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kalimx03/warrior-track-new/internal/config"
	"github.com/kalimx03/warrior-track-new/internal/controllers"
	"github.com/kalimx03/warrior-track-new/internal/database"
	"github.com/kalimx03/warrior-track-new/internal/facematch"
	"github.com/kalimx03/warrior-track-new/internal/metrics"
	"github.com/kalimx03/warrior-track-new/internal/middleware"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
	"github.com/kalimx03/warrior-track-new/internal/routes"
	"github.com/kalimx03/warrior-track-new/internal/scheduler"
	"github.com/kalimx03/warrior-track-new/internal/services"
	"github.com/kalimx03/warrior-track-new/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := database.Connect(&cfg.Database); err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	if err := database.RunMigrations(&cfg.Database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	store, err := buildSnapshotStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize snapshot store: %v", err)
	}

	db := database.GetDB()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	loginSessionRepo := repositories.NewLoginSessionRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, loginSessionRepo, cfg)
	sessionService, err := services.NewSessionService(sessionRepo, courseRepo, attendanceRepo, cfg)
	if err != nil {
		log.Fatalf("failed to build session service: %v", err)
	}
	attendanceService, err := services.NewAttendanceService(sessionRepo, attendanceRepo, courseRepo, userRepo, cfg)
	if err != nil {
		log.Fatalf("failed to build attendance service: %v", err)
	}
	enrollmentService := services.NewFaceEnrollmentService(userRepo, store)
	matcher := facematch.New(cfg.FaceMatch.Threshold)

	// Initialize controllers
	authController := controllers.NewAuthController(authService)
	courseController := controllers.NewCourseController(courseRepo, userRepo)
	sessionController := controllers.NewSessionController(sessionService)
	attendanceController := controllers.NewAttendanceController(attendanceService, enrollmentService, matcher)
	faceController := controllers.NewFaceController(enrollmentService)

	// Background PIN rotation for THEORY sessions
	rotation, err := scheduler.New(sessionRepo, cfg)
	if err != nil {
		log.Fatalf("failed to build rotation scheduler: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rotation.Run(ctx)

	if cfg.Metrics.Enabled {
		metrics.Serve(cfg.Metrics.Port)
	}

	// Setup router
	router := gin.Default()
	router.Use(corsMiddleware(cfg))
	routes.SetupRoutes(
		router,
		authController,
		courseController,
		sessionController,
		attendanceController,
		faceController,
		middleware.AuthMiddleware(cfg),
		middleware.RequireRole(models.RoleFaculty),
	)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	go func() {
		log.Printf("Server running on %s (snapshots=%T)", addr, store)
		if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	waitForShutdown()
}

func buildSnapshotStore(cfg *config.Config) (storage.SnapshotStore, error) {
	if cfg.CloudStorage.Enabled {
		azStore, err := storage.NewAzureBlobStore(
			cfg.CloudStorage.Endpoint,
			cfg.CloudStorage.AccessKey,
			cfg.CloudStorage.SecretKey,
			cfg.CloudStorage.PrivateContainer,
		)
		if err != nil {
			log.Printf("Azure Blob init failed, falling back to local snapshots: %v", err)
			return storage.NewLocalStore(snapshotPath(cfg)), nil
		}
		return azStore, nil
	}
	return storage.NewLocalStore(snapshotPath(cfg)), nil
}

func snapshotPath(cfg *config.Config) string {
	if cfg.Snapshots.Path != "" {
		return cfg.Snapshots.Path
	}
	return "./storage/snapshots"
}

func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down server...")
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	origin := "*"
	if len(cfg.CORS.AllowedOrigins) == 1 {
		origin = cfg.CORS.AllowedOrigins[0]
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
