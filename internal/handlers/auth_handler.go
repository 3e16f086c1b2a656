package handlers

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
	"github.com/vietvuong1994/SwiftMessenger/internal/repository"
	"github.com/vietvuong1994/SwiftMessenger/internal/services"
	"github.com/vietvuong1994/SwiftMessenger/pkg/utils"
)

const minPasswordLength = 6

type userRegistrar interface {
	RegisterUser(ctx context.Context, profile models.UserProfile) error
}

type AuthHandler struct {
	userRepo  *repository.UserRepository
	registrar userRegistrar
	jwtSecret string
}

func NewAuthHandler(
	userRepo *repository.UserRepository,
	registrar userRegistrar,
	jwtSecret string,
) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		registrar: registrar,
		jwtSecret: jwtSecret,
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address"})
	}
	if len(req.Password) < minPasswordLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password is too short"})
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "First and last name are required"})
	}

	email := parsedEmail.Address
	userKey := utils.SafeEmail(email)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register"})
	}

	account := &models.User{
		Key:          userKey,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.userRepo.CreateAccount(c.Context(), account); err != nil {
		if errors.Is(err, kv.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email is already registered"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register"})
	}

	profile := models.UserProfile{
		Key:       userKey,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := h.registrar.RegisterUser(c.Context(), profile); err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email is already registered"})
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register"})
		}
	}

	token, err := utils.GenerateToken(userKey, h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"key":        userKey,
			"email":      email,
			"first_name": profile.FirstName,
			"last_name":  profile.LastName,
		},
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userKey := utils.SafeEmail(strings.TrimSpace(req.Email))
	account, err := h.userRepo.GetAccount(c.Context(), userKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in"})
	}

	if !utils.CheckPassword(req.Password, account.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := utils.GenerateToken(userKey, h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
	}

	return c.JSON(fiber.Map{"token": token})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userKey, ok := c.Locals("user_key").(string)
	if !ok || userKey == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.userRepo.GetProfile(c.Context(), userKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	return c.JSON(fiber.Map{"user": profile})
}
