package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
)

// MessageRepository owns the per-conversation message log: one document
// per conversation holding the append-only ordered message list.
type MessageRepository struct {
	store kv.Store
}

func NewMessageRepository(store kv.Store) *MessageRepository {
	return &MessageRepository{store: store}
}

// Append adds a message to the conversation's log, creating the log
// with the first message. Appends are monotonic: existing entries are
// never removed or reordered.
func (r *MessageRepository) Append(
	ctx context.Context,
	conversationID string,
	message models.Message,
) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		var messages []models.Message
		var version int64

		doc, err := r.store.Get(ctx, messagesKey(conversationID))
		switch {
		case err == nil:
			if err := json.Unmarshal(doc.Data, &messages); err != nil {
				return fmt.Errorf("unmarshal messages for %s: %w", conversationID, err)
			}
			version = doc.Version
		case errors.Is(err, kv.ErrNotFound):
			// first message creates the log
		default:
			return err
		}

		messages = append(messages, message)

		data, err := json.Marshal(messages)
		if err != nil {
			return fmt.Errorf("marshal messages for %s: %w", conversationID, err)
		}

		err = r.store.PutVersion(ctx, messagesKey(conversationID), data, version)
		if errors.Is(err, kv.ErrConflict) {
			continue
		}
		return err
	}
	return kv.ErrConflict
}

// ListByConversation returns the log in append order. kv.ErrNotFound is
// returned when no log exists for the id.
func (r *MessageRepository) ListByConversation(
	ctx context.Context,
	conversationID string,
) ([]models.Message, error) {
	doc, err := r.store.Get(ctx, messagesKey(conversationID))
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := json.Unmarshal(doc.Data, &messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages for %s: %w", conversationID, err)
	}
	return messages, nil
}
