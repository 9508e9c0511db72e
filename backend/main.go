package main

import (
	"log"

	"kitlab/backend/config"
	"kitlab/backend/engine"
	"kitlab/backend/middleware"
	"kitlab/backend/notify"
	"kitlab/backend/routes"
	"kitlab/backend/store"
	"kitlab/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Wire the store, the notifier and the engine
	s := store.NewGorm(db)
	mailer := notify.NewMailer(s, s, cfg, logger)
	eng := engine.New(s, mailer, logger)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, s, eng, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
