package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avdbroek/plekwijzer-backend/config"
	"github.com/avdbroek/plekwijzer-backend/internal/app/controller"
	"github.com/avdbroek/plekwijzer-backend/internal/app/repository"
	"github.com/avdbroek/plekwijzer-backend/internal/app/service"
	"github.com/avdbroek/plekwijzer-backend/internal/db"
	"github.com/avdbroek/plekwijzer-backend/internal/middleware"
	"github.com/avdbroek/plekwijzer-backend/internal/router"
	"github.com/avdbroek/plekwijzer-backend/internal/scheduler"
	"github.com/avdbroek/plekwijzer-backend/internal/storage"
	ws "github.com/avdbroek/plekwijzer-backend/internal/websocket"
	"github.com/avdbroek/plekwijzer-backend/pkg/logger"
	"github.com/avdbroek/plekwijzer-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Plekwijzer Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional: without it logout revocation and the top-rated
	// cache degrade gracefully.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	cityRepo := repository.NewCityRepository(db.GetDB())
	locationRepo := repository.NewLocationRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Live feed hub
	hub := ws.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(userRepo, &cfg.JWT)
	locationService := service.NewLocationService(locationRepo, cityRepo, reviewRepo, userRepo, hub)
	reviewService := service.NewReviewService(reviewRepo, locationRepo, userRepo, hub)

	// Photo storage
	photoStorage := storage.NewPhotoStorage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Controllers
	authController := controller.NewAuthController(authService, &cfg.JWT)
	locationController := controller.NewLocationController(locationService)
	reviewController := controller.NewReviewController(reviewService)
	uploadController := controller.NewUploadController(photoStorage)
	feedController := controller.NewFeedController(hub, authService, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		locationController,
		reviewController,
		uploadController,
		feedController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Keep the top-rated cache warm
	topRatedScheduler := scheduler.NewTopRatedScheduler(locationService)
	if err := topRatedScheduler.Start(); err != nil {
		logger.Warn("Top rated scheduler not running", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer topRatedScheduler.Stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
