package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/kv/memory"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
)

func TestCreateProfileThenExists(t *testing.T) {
	repo := NewUserRepository(memory.New())
	ctx := context.Background()

	profile := &models.UserProfile{Key: "viet-gmail-com", FirstName: "Viet", LastName: "Vuong"}
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	ok, err := repo.Exists(ctx, "viet-gmail-com")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("expected profile to exist after create")
	}

	got, err := repo.GetProfile(ctx, "viet-gmail-com")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.FirstName != "Viet" || got.LastName != "Vuong" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestCreateProfileTwiceConflicts(t *testing.T) {
	repo := NewUserRepository(memory.New())
	ctx := context.Background()

	profile := &models.UserProfile{Key: "a-x-com", FirstName: "A", LastName: "X"}
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	err := repo.CreateProfile(ctx, profile)
	if !errors.Is(err, kv.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate profile, got %v", err)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	repo := NewUserRepository(memory.New())

	_, err := repo.GetProfile(context.Background(), "ghost-x-com")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRoundtrip(t *testing.T) {
	repo := NewUserRepository(memory.New())
	ctx := context.Background()

	user := &models.User{Key: "a-x-com", Email: "a@x.com", PasswordHash: "hash"}
	if err := repo.CreateAccount(ctx, user); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	err := repo.CreateAccount(ctx, user)
	if !errors.Is(err, kv.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate account, got %v", err)
	}

	got, err := repo.GetAccount(ctx, "a-x-com")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Email != "a@x.com" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestSetAvatarURL(t *testing.T) {
	repo := NewUserRepository(memory.New())
	ctx := context.Background()

	profile := &models.UserProfile{Key: "a-x-com", FirstName: "A", LastName: "X"}
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	if err := repo.SetAvatarURL(ctx, "a-x-com", "https://blobs/images/a-x-com_profile_picture.png"); err != nil {
		t.Fatalf("SetAvatarURL: %v", err)
	}

	got, err := repo.GetProfile(ctx, "a-x-com")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.AvatarURL == "" || got.FirstName != "A" {
		t.Fatalf("avatar update lost profile fields: %+v", got)
	}
}
