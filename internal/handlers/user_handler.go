package handlers

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
	"github.com/vietvuong1994/SwiftMessenger/internal/repository"
	"github.com/vietvuong1994/SwiftMessenger/internal/services"
)

const maxAvatarBytes = 5 << 20

type directoryService interface {
	SearchUsers(ctx context.Context, term string) ([]models.DirectoryEntry, error)
	UserExists(ctx context.Context, identifier string) (bool, error)
}

type UserHandler struct {
	service  directoryService
	userRepo *repository.UserRepository
	storage  services.StorageService
}

func NewUserHandler(
	service directoryService,
	userRepo *repository.UserRepository,
	storage services.StorageService,
) *UserHandler {
	return &UserHandler{
		service:  service,
		userRepo: userRepo,
		storage:  storage,
	}
}

func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))

	users, err := h.service.SearchUsers(c.Context(), term)
	if err != nil {
		if errors.Is(err, services.ErrDirectoryUnavailable) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search users"})
	}

	return c.JSON(fiber.Map{"users": users})
}

func (h *UserHandler) UserExists(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user key"})
	}

	exists, err := h.service.UserExists(c.Context(), key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check user"})
	}

	return c.JSON(fiber.Map{"exists": exists})
}

func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userKey, ok := c.Locals("user_key").(string)
	if !ok || userKey == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if h.storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage is not configured"})
	}

	profile, err := h.userRepo.GetProfile(c.Context(), userKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Avatar file is required"})
	}
	if fileHeader.Size > maxAvatarBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "Avatar file is too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read avatar file"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read avatar file"})
	}

	avatarURL, err := h.storage.UploadProfilePicture(c.Context(), data, profile.ProfilePictureFileName())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload avatar"})
	}

	if err := h.userRepo.SetAvatarURL(c.Context(), userKey, avatarURL); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save avatar"})
	}

	return c.JSON(fiber.Map{"avatar_url": avatarURL})
}
