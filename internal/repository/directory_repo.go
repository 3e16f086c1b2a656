package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
)

// DirectoryRepository maintains the denormalized, searchable listing of
// all registered users in a single shared document.
type DirectoryRepository struct {
	store kv.Store
}

func NewDirectoryRepository(store kv.Store) *DirectoryRepository {
	return &DirectoryRepository{store: store}
}

// Add appends an entry to the listing, creating the listing document on
// first use. The write is versioned, so two concurrent registrations
// cannot overwrite each other; adding a key that is already listed is a
// no-op rather than a duplicate.
func (r *DirectoryRepository) Add(ctx context.Context, entry models.DirectoryEntry) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		var entries []models.DirectoryEntry
		var version int64

		doc, err := r.store.Get(ctx, directoryKey)
		switch {
		case err == nil:
			if err := json.Unmarshal(doc.Data, &entries); err != nil {
				return fmt.Errorf("unmarshal directory: %w", err)
			}
			version = doc.Version
		case errors.Is(err, kv.ErrNotFound):
			// first registration creates the listing
		default:
			return err
		}

		for _, existing := range entries {
			if existing.Key == entry.Key {
				return nil
			}
		}
		entries = append(entries, entry)

		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshal directory: %w", err)
		}

		err = r.store.PutVersion(ctx, directoryKey, data, version)
		if errors.Is(err, kv.ErrConflict) {
			continue
		}
		return err
	}
	return kv.ErrConflict
}

// ListAll returns the full listing, unordered. kv.ErrNotFound is
// returned when no user has registered yet.
func (r *DirectoryRepository) ListAll(ctx context.Context) ([]models.DirectoryEntry, error) {
	doc, err := r.store.Get(ctx, directoryKey)
	if err != nil {
		return nil, err
	}

	var entries []models.DirectoryEntry
	if err := json.Unmarshal(doc.Data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal directory: %w", err)
	}
	return entries, nil
}
