package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
)

// ConversationRepository owns the per-user conversation index: one
// document per owner holding that user's ordered conversation
// summaries.
type ConversationRepository struct {
	store kv.Store
}

func NewConversationRepository(store kv.Store) *ConversationRepository {
	return &ConversationRepository{store: store}
}

// AppendOrCreate adds a summary to the owner's index, creating the
// index document on the owner's first conversation. kv.ErrNotFound is
// returned when the owner has no profile record.
func (r *ConversationRepository) AppendOrCreate(
	ctx context.Context,
	ownerKey string,
	summary models.ConversationSummary,
) error {
	ok, err := r.store.Exists(ctx, profileKey(ownerKey))
	if err != nil {
		return err
	}
	if !ok {
		return kv.ErrNotFound
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		var summaries []models.ConversationSummary
		var version int64

		doc, err := r.store.Get(ctx, conversationsKey(ownerKey))
		switch {
		case err == nil:
			if err := json.Unmarshal(doc.Data, &summaries); err != nil {
				return fmt.Errorf("unmarshal conversations for %s: %w", ownerKey, err)
			}
			version = doc.Version
		case errors.Is(err, kv.ErrNotFound):
			// first conversation creates the index
		default:
			return err
		}

		summaries = append(summaries, summary)

		data, err := json.Marshal(summaries)
		if err != nil {
			return fmt.Errorf("marshal conversations for %s: %w", ownerKey, err)
		}

		err = r.store.PutVersion(ctx, conversationsKey(ownerKey), data, version)
		if errors.Is(err, kv.ErrConflict) {
			continue
		}
		return err
	}
	return kv.ErrConflict
}

// UpdateLatest overwrites the latest-message fields of the summary
// identified by conversationID in the owner's index. kv.ErrNotFound is
// returned when the index or the conversation is absent.
func (r *ConversationRepository) UpdateLatest(
	ctx context.Context,
	ownerKey string,
	conversationID string,
	latest models.LatestMessage,
) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		doc, err := r.store.Get(ctx, conversationsKey(ownerKey))
		if err != nil {
			return err
		}

		var summaries []models.ConversationSummary
		if err := json.Unmarshal(doc.Data, &summaries); err != nil {
			return fmt.Errorf("unmarshal conversations for %s: %w", ownerKey, err)
		}

		found := false
		for i := range summaries {
			if summaries[i].ID == conversationID {
				summaries[i].Latest = latest
				found = true
				break
			}
		}
		if !found {
			return kv.ErrNotFound
		}

		data, err := json.Marshal(summaries)
		if err != nil {
			return fmt.Errorf("marshal conversations for %s: %w", ownerKey, err)
		}

		err = r.store.PutVersion(ctx, conversationsKey(ownerKey), data, doc.Version)
		if errors.Is(err, kv.ErrConflict) {
			continue
		}
		return err
	}
	return kv.ErrConflict
}

// ListForOwner returns the owner's current index snapshot in insertion
// order. kv.ErrNotFound means the owner has never started a
// conversation, which is distinct from an empty index.
func (r *ConversationRepository) ListForOwner(
	ctx context.Context,
	ownerKey string,
) ([]models.ConversationSummary, error) {
	doc, err := r.store.Get(ctx, conversationsKey(ownerKey))
	if err != nil {
		return nil, err
	}

	var summaries []models.ConversationSummary
	if err := json.Unmarshal(doc.Data, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshal conversations for %s: %w", ownerKey, err)
	}
	return summaries, nil
}
