package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv/memory"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
	"github.com/vietvuong1994/SwiftMessenger/internal/repository"
)

type stubDirectoryService struct {
	searchResult []models.DirectoryEntry
	searchErr    error
	existsResult bool
	existsErr    error
	lastTerm     string
	lastKey      string
}

func (s *stubDirectoryService) SearchUsers(
	_ context.Context,
	term string,
) ([]models.DirectoryEntry, error) {
	s.lastTerm = term
	return s.searchResult, s.searchErr
}

func (s *stubDirectoryService) UserExists(
	_ context.Context,
	identifier string,
) (bool, error) {
	s.lastKey = identifier
	return s.existsResult, s.existsErr
}

type stubStorage struct {
	uploadURL    string
	uploadErr    error
	lastFileName string
	lastData     []byte
}

func (s *stubStorage) UploadProfilePicture(
	_ context.Context,
	data []byte,
	fileName string,
) (string, error) {
	s.lastData = data
	s.lastFileName = fileName
	return s.uploadURL, s.uploadErr
}

func (s *stubStorage) DownloadURL(_ context.Context, fileName string) (string, error) {
	s.lastFileName = fileName
	return s.uploadURL, nil
}

func TestSearchUsersForwardsQueryTerm(t *testing.T) {
	service := &stubDirectoryService{
		searchResult: []models.DirectoryEntry{
			{Name: "Alice Smith", Key: "alice-example-com"},
		},
	}
	handler := NewUserHandler(service, repository.NewUserRepository(memory.New()), nil)

	app := fiber.New()
	app.Get("/api/v1/users", handler.SearchUsers)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?q=ali", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTerm != "ali" {
		t.Fatalf("expected query term forwarded, got %q", service.lastTerm)
	}

	var payload struct {
		Users []map[string]any `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(payload.Users))
	}
	if payload.Users[0]["email"] != "alice-example-com" {
		t.Fatalf("unexpected user key: %v", payload.Users[0]["email"])
	}
}

func TestUserExistsReturnsFlag(t *testing.T) {
	service := &stubDirectoryService{existsResult: true}
	handler := NewUserHandler(service, repository.NewUserRepository(memory.New()), nil)

	app := fiber.New()
	app.Get("/api/v1/users/:key/exists", handler.UserExists)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/bob-example-com/exists", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastKey != "bob-example-com" {
		t.Fatalf("expected key forwarded, got %q", service.lastKey)
	}

	var payload struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !payload.Exists {
		t.Fatalf("expected exists to be true")
	}
}

func TestUploadAvatarStoresFileAndURL(t *testing.T) {
	userRepo := repository.NewUserRepository(memory.New())
	profile := &models.UserProfile{
		Key:       "alice-example-com",
		FirstName: "Alice",
		LastName:  "Smith",
	}
	if err := userRepo.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	storage := &stubStorage{uploadURL: "https://cdn.example.com/images/alice-example-com_profile_picture.png"}
	handler := NewUserHandler(&stubDirectoryService{}, userRepo, storage)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_key", "alice-example-com")
		return c.Next()
	})
	app.Post("/api/v1/users/profile/avatar", handler.UploadAvatar)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("avatar", "avatar.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("part.Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/profile/avatar", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if storage.lastFileName != "alice-example-com_profile_picture.png" {
		t.Fatalf("unexpected file name: %q", storage.lastFileName)
	}
	if !bytes.Equal(storage.lastData, []byte("png-bytes")) {
		t.Fatalf("expected file bytes forwarded to storage")
	}

	updated, err := userRepo.GetProfile(context.Background(), "alice-example-com")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if updated.AvatarURL != storage.uploadURL {
		t.Fatalf("expected avatar URL saved, got %q", updated.AvatarURL)
	}
}

func TestUploadAvatarWithoutStorageReturns503(t *testing.T) {
	handler := NewUserHandler(&stubDirectoryService{}, repository.NewUserRepository(memory.New()), nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_key", "alice-example-com")
		return c.Next()
	})
	app.Post("/api/v1/users/profile/avatar", handler.UploadAvatar)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/profile/avatar", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
