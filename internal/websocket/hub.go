package chatws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/vietvuong1994/SwiftMessenger/internal/models"
	"github.com/vietvuong1994/SwiftMessenger/internal/services"
)

type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	userKey string
	send    chan []byte
}

type sender interface {
	SendMessage(
		ctx context.Context,
		senderKey string,
		conversationID string,
		message models.Message,
	) (*services.ChatDelivery, error)
}

type Message struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	SenderKey      string `json:"sender_email"`
	RecipientKey   string `json:"recipient_email,omitempty"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userKey string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		userKey: userKey,
		send:    make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userKey]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userKey] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userKey]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userKey)
			}
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues a message for delivery to the sender's and
// recipient's connected clients.
func (h *Hub) Broadcast(message *Message) {
	h.broadcast <- message
}

func (h *Hub) deliver(message *Message) {
	encoded, err := json.Marshal(message)
	if err != nil {
		log.Printf("chat hub encode message: %v", err)
		return
	}

	h.sendToUser(message.SenderKey, encoded)
	if message.RecipientKey != "" && message.RecipientKey != message.SenderKey {
		h.sendToUser(message.RecipientKey, encoded)
	}
}

func (h *Hub) sendToUser(userKey string, payload []byte) {
	set, ok := h.clients[userKey]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userKey)
	}
}

func (c *Client) ReadPump(service sender) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	if c.userKey == "" {
		writeError(c, "invalid user")
		return
	}

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type           string             `json:"type"`
			ConversationID string             `json:"conversation_id"`
			MessageType    models.MessageKind `json:"message_type"`
			Content        string             `json:"content"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			writeError(c, "invalid message payload")
			continue
		}
		if incoming.Type != "message" {
			writeError(c, "unsupported message type")
			continue
		}
		if incoming.ConversationID == "" {
			writeError(c, "invalid conversation id")
			continue
		}

		delivery, err := service.SendMessage(
			context.Background(),
			c.userKey,
			incoming.ConversationID,
			models.Message{
				ID:      uuid.NewString(),
				Kind:    incoming.MessageType,
				Content: incoming.Content,
			},
		)
		if err != nil {
			writeError(c, "failed to send message")
			continue
		}

		c.hub.broadcast <- &Message{
			Type:           "message",
			ConversationID: delivery.ConversationID,
			SenderKey:      delivery.Message.SenderKey,
			RecipientKey:   delivery.RecipientKey,
			Content:        delivery.Message.Content,
			Timestamp:      services.FormatChatTimestamp(delivery.Message.SentAt),
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func writeError(client *Client, message string) {
	payload, err := json.Marshal(Message{
		Type:      "error",
		Content:   message,
		Timestamp: services.FormatChatTimestamp(time.Now().UTC()),
	})
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
		client.hub.Unregister(client)
	}
}
