package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/vietvuong1994/SwiftMessenger/internal/config"
	"github.com/vietvuong1994/SwiftMessenger/internal/handlers"
	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/middleware"
	"github.com/vietvuong1994/SwiftMessenger/internal/repository"
	"github.com/vietvuong1994/SwiftMessenger/internal/services"
	chatws "github.com/vietvuong1994/SwiftMessenger/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, store kv.Store) {
	userRepo := repository.NewUserRepository(store)
	directoryRepo := repository.NewDirectoryRepository(store)
	conversationRepo := repository.NewConversationRepository(store)
	messageRepo := repository.NewMessageRepository(store)

	var storageService services.StorageService
	if cfg.StorageConfigured() {
		storageService = services.NewS3StorageService(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			cfg.S3Endpoint,
			cfg.S3Region,
			cfg.S3Bucket,
			cfg.S3PublicBaseURL,
		)
	}

	chatService := services.NewChatService(userRepo, directoryRepo, conversationRepo, messageRepo)
	chatHub := chatws.NewHub()
	go chatHub.Run()

	authHandler := handlers.NewAuthHandler(userRepo, chatService, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(chatService, userRepo, storageService)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Get("", userHandler.SearchUsers)
	users.Get("/:key/exists", userHandler.UserExists)
	users.Post("/profile/avatar", userHandler.UploadAvatar)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.StartConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)
	conversations.Post("/:id/messages", chatHandler.SendMessage)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
