package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vietvuong1994/SwiftMessenger/internal/config"
	"github.com/vietvuong1994/SwiftMessenger/internal/database"
	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	kvmemory "github.com/vietvuong1994/SwiftMessenger/internal/kv/memory"
	kvpostgres "github.com/vietvuong1994/SwiftMessenger/internal/kv/postgres"
	kvredis "github.com/vietvuong1994/SwiftMessenger/internal/kv/redis"
	"github.com/vietvuong1994/SwiftMessenger/internal/routes"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to the backing store
	var store kv.Store
	switch cfg.StoreBackend {
	case "redis":
		if err := database.ConnectRedis(cfg.RedisURL); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer database.CloseRedis()
		store = kvredis.New(database.Redis)
	case "postgres":
		if err := database.ConnectDB(cfg.DBUrl); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.CloseDB()
		store = kvpostgres.New(database.DB)
	case "memory":
		log.Println("Using in-memory store; data will not survive a restart")
		store = kvmemory.New()
	}

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, store)

	// 4. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
