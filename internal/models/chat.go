package models

import "time"

type MessageKind string

const (
	MessageKindText           MessageKind = "text"
	MessageKindAttributedText MessageKind = "attributed_text"
	MessageKindPhoto          MessageKind = "photo"
	MessageKindVideo          MessageKind = "video"
	MessageKindLocation       MessageKind = "location"
	MessageKindEmoji          MessageKind = "emoji"
	MessageKindAudio          MessageKind = "audio"
	MessageKindContact        MessageKind = "contact"
	MessageKindLinkPreview    MessageKind = "link_preview"
	MessageKindCustom         MessageKind = "custom"
)

func (k MessageKind) Valid() bool {
	switch k {
	case MessageKindText, MessageKindAttributedText, MessageKindPhoto,
		MessageKindVideo, MessageKindLocation, MessageKindEmoji,
		MessageKindAudio, MessageKindContact, MessageKindLinkPreview,
		MessageKindCustom:
		return true
	default:
		return false
	}
}

type Message struct {
	ID        string      `json:"id"`
	Kind      MessageKind `json:"type"`
	Content   string      `json:"content"`
	SenderKey string      `json:"sender_email"`
	IsRead    bool        `json:"is_read"`
	SentAt    time.Time   `json:"date"`
}

// PreviewText is the text shown in conversation listings. Only text
// messages contribute their content; other kinds preview as empty.
func (m Message) PreviewText() string {
	if m.Kind == MessageKindText {
		return m.Content
	}
	return ""
}

type LatestMessage struct {
	Preview string    `json:"message"`
	SentAt  time.Time `json:"date"`
	IsRead  bool      `json:"is_read"`
}

type ConversationSummary struct {
	ID      string        `json:"id"`
	PeerKey string        `json:"other_user_email"`
	Latest  LatestMessage `json:"latest_message"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
