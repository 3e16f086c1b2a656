package handlers

import (
	"context"
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vietvuong1994/SwiftMessenger/internal/models"
	"github.com/vietvuong1994/SwiftMessenger/internal/services"
	chatws "github.com/vietvuong1994/SwiftMessenger/internal/websocket"
	"github.com/vietvuong1994/SwiftMessenger/pkg/utils"
)

type chatApplicationService interface {
	StartConversation(ctx context.Context, senderKey, peerKey string, first models.Message) (string, error)
	SendMessage(ctx context.Context, senderKey, conversationID string, message models.Message) (*services.ChatDelivery, error)
	ListConversations(ctx context.Context, ownerKey string) ([]models.ConversationSummary, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

type ChatHandler struct {
	service   chatApplicationService
	hub       *chatws.Hub
	jwtSecret string
}

func NewChatHandler(service chatApplicationService, hub *chatws.Hub, jwtSecret string) *ChatHandler {
	return &ChatHandler{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

type messagePayload struct {
	ID      string             `json:"id"`
	Kind    models.MessageKind `json:"type"`
	Content string             `json:"content"`
}

func (p messagePayload) toModel() models.Message {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return models.Message{
		ID:      id,
		Kind:    p.Kind,
		Content: p.Content,
	}
}

type startConversationRequest struct {
	PeerEmail string         `json:"peer_email"`
	Message   messagePayload `json:"message"`
}

func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	userKey, ok := c.Locals("user_key").(string)
	if !ok || userKey == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversations, err := h.service.ListConversations(c.Context(), userKey)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(fiber.Map{"conversations": conversations})
}

func (h *ChatHandler) StartConversation(c *fiber.Ctx) error {
	userKey, ok := c.Locals("user_key").(string)
	if !ok || userKey == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req startConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	first := req.Message.toModel()
	conversationID, err := h.service.StartConversation(c.Context(), userKey, req.PeerEmail, first)
	if err != nil {
		return mapChatError(c, err)
	}

	h.hub.Broadcast(&chatws.Message{
		Type:           "message",
		ConversationID: conversationID,
		SenderKey:      userKey,
		RecipientKey:   utils.SafeEmail(strings.TrimSpace(req.PeerEmail)),
		Content:        first.Content,
		Timestamp:      services.FormatChatTimestamp(first.SentAt),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation_id": conversationID})
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	if _, ok := c.Locals("user_key").(string); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID := strings.TrimSpace(c.Params("id"))
	if conversationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	messages, err := h.service.ListMessages(c.Context(), conversationID)
	if err != nil {
		return mapChatError(c, err)
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return c.JSON(fiber.Map{
		"messages":   pageSlice(messages, page, limit),
		"pagination": buildPaginationMeta(page, limit, len(messages)),
	})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userKey, ok := c.Locals("user_key").(string)
	if !ok || userKey == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID := strings.TrimSpace(c.Params("id"))
	if conversationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	var payload messagePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	delivery, err := h.service.SendMessage(c.Context(), userKey, conversationID, payload.toModel())
	if err != nil {
		return mapChatError(c, err)
	}

	h.hub.Broadcast(&chatws.Message{
		Type:           "message",
		ConversationID: delivery.ConversationID,
		SenderKey:      delivery.Message.SenderKey,
		RecipientKey:   delivery.RecipientKey,
		Content:        delivery.Message.Content,
		Timestamp:      services.FormatChatTimestamp(delivery.Message.SentAt),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": delivery.Message})
}

func (h *ChatHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_key", claims.UserKey)
	return c.Next()
}

func (h *ChatHandler) HandleWebSocket(conn *websocket.Conn) {
	userKey, _ := conn.Locals("user_key").(string)
	client := chatws.NewClient(h.hub, conn, userKey)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(h.service)
}

func (h *ChatHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

func mapChatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, services.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
	case errors.Is(err, services.ErrNoConversations):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No conversations found"})
	case errors.Is(err, services.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Already exists"})
	case errors.Is(err, services.ErrInconsistent):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Conversation state is inconsistent"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process chat request"})
	}
}
