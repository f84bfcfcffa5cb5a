package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"training-portal/backend/config"
	"training-portal/backend/middleware"
	"training-portal/backend/models"
	"training-portal/backend/routes"
	"training-portal/backend/seed"
	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()
	if !cfg.DotEnvLoaded {
		logger.Info("no .env file found, using process environment")
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("could not initialize database", "driver", cfg.DBDriver, "error", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("could not migrate database", "error", err)
	}

	if cfg.SeedFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := seed.LoadAndApply(ctx, db, cfg.SeedFile, logger)
		cancel()
		if err != nil {
			logger.Fatal("could not seed catalog", "file", cfg.SeedFile, "error", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{AppName: "training-portal"})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server starting", "port", cfg.ServerPort, "completion_policy", cfg.CompletionPolicy)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
