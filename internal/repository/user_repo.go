package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
)

type UserRepository struct {
	store kv.Store
}

func NewUserRepository(store kv.Store) *UserRepository {
	return &UserRepository{store: store}
}

// Exists reports whether a profile record is present for the key. No
// side effects.
func (r *UserRepository) Exists(ctx context.Context, userKey string) (bool, error) {
	return r.store.Exists(ctx, profileKey(userKey))
}

// CreateAccount stores the credential record. kv.ErrConflict is
// returned when an account already exists for the key.
func (r *UserRepository) CreateAccount(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal account %s: %w", user.Key, err)
	}
	return r.store.PutVersion(ctx, accountKey(user.Key), data, 0)
}

func (r *UserRepository) GetAccount(ctx context.Context, userKey string) (*models.User, error) {
	doc, err := r.store.Get(ctx, accountKey(userKey))
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(doc.Data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal account %s: %w", userKey, err)
	}
	return &user, nil
}

// CreateProfile writes the profile record. The write is conditional on
// the key being absent, so concurrent registrations for the same key
// cannot both succeed.
func (r *UserRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", profile.Key, err)
	}
	return r.store.PutVersion(ctx, profileKey(profile.Key), data, 0)
}

func (r *UserRepository) GetProfile(ctx context.Context, userKey string) (*models.UserProfile, error) {
	doc, err := r.store.Get(ctx, profileKey(userKey))
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := json.Unmarshal(doc.Data, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s: %w", userKey, err)
	}
	return &profile, nil
}

// SetAvatarURL updates the avatar field of an otherwise immutable
// profile, retrying on version conflicts.
func (r *UserRepository) SetAvatarURL(ctx context.Context, userKey, avatarURL string) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		doc, err := r.store.Get(ctx, profileKey(userKey))
		if err != nil {
			return err
		}

		var profile models.UserProfile
		if err := json.Unmarshal(doc.Data, &profile); err != nil {
			return fmt.Errorf("unmarshal profile %s: %w", userKey, err)
		}
		profile.AvatarURL = avatarURL

		data, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("marshal profile %s: %w", userKey, err)
		}

		err = r.store.PutVersion(ctx, profileKey(userKey), data, doc.Version)
		if errors.Is(err, kv.ErrConflict) {
			continue
		}
		return err
	}
	return kv.ErrConflict
}
