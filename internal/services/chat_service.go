package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
	"github.com/vietvuong1994/SwiftMessenger/internal/repository"
	"github.com/vietvuong1994/SwiftMessenger/pkg/utils"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUserNotFound         = errors.New("user not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoConversations      = errors.New("no conversations for user")
	ErrAlreadyExists        = errors.New("user already exists")
	ErrDirectoryUnavailable = errors.New("failed to fetch user directory")
	ErrInconsistent         = errors.New("conversation index out of sync with message log")
)

const conversationIDPrefix = "conversation_"

type ChatService struct {
	userRepo         *repository.UserRepository
	directoryRepo    *repository.DirectoryRepository
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository

	// one-shot directory cache; stale until the process restarts
	mu        sync.Mutex
	directory []models.DirectoryEntry
	fetched   bool
}

type ChatDelivery struct {
	ConversationID string
	Message        models.Message
	RecipientKey   string
}

func NewChatService(
	userRepo *repository.UserRepository,
	directoryRepo *repository.DirectoryRepository,
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
) *ChatService {
	return &ChatService{
		userRepo:         userRepo,
		directoryRepo:    directoryRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

// RegisterUser creates the profile record and its directory listing
// entry. The profile key is derived from whatever identifier the caller
// passes, so emails and already-normalized keys are both accepted.
func (s *ChatService) RegisterUser(ctx context.Context, profile models.UserProfile) error {
	profile.Key = utils.SafeEmail(strings.TrimSpace(profile.Key))
	profile.FirstName = strings.TrimSpace(profile.FirstName)
	profile.LastName = strings.TrimSpace(profile.LastName)
	if profile.Key == "" || profile.FirstName == "" || profile.LastName == "" {
		return ErrInvalidInput
	}

	err := s.userRepo.CreateProfile(ctx, &profile)
	if errors.Is(err, kv.ErrConflict) {
		return ErrAlreadyExists
	}
	if err != nil {
		return err
	}

	return s.directoryRepo.Add(ctx, models.DirectoryEntry{
		Name: profile.DisplayName(),
		Key:  profile.Key,
	})
}

func (s *ChatService) UserExists(ctx context.Context, identifier string) (bool, error) {
	return s.userRepo.Exists(ctx, utils.SafeEmail(identifier))
}

// SearchUsers filters the directory listing by case-insensitive
// substring match on the display name. The listing is fetched once per
// service instance and reused for every subsequent search.
func (s *ChatService) SearchUsers(ctx context.Context, term string) ([]models.DirectoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetched {
		entries, err := s.directoryRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		s.directory = entries
		s.fetched = true
	}

	return FilterDirectory(term, s.directory), nil
}

// FilterDirectory is the pure search over a directory listing: entries
// whose display name contains the term, case-insensitively.
func FilterDirectory(term string, entries []models.DirectoryEntry) []models.DirectoryEntry {
	needle := strings.ToLower(strings.TrimSpace(term))

	results := make([]models.DirectoryEntry, 0)
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), needle) {
			results = append(results, entry)
		}
	}
	return results
}

// StartConversation creates a conversation between the sender and the
// peer from the first message. The conversation id is derived from the
// first message's id, an index summary is appended for both
// participants, then the message log is created. A log-create failure
// after the index writes leaves dangling summaries and is reported as
// ErrInconsistent.
func (s *ChatService) StartConversation(
	ctx context.Context,
	senderKey string,
	peerKey string,
	first models.Message,
) (string, error) {
	senderKey = utils.SafeEmail(strings.TrimSpace(senderKey))
	peerKey = utils.SafeEmail(strings.TrimSpace(peerKey))
	if senderKey == "" || peerKey == "" || peerKey == senderKey {
		return "", ErrInvalidInput
	}
	if err := validateMessage(&first, senderKey); err != nil {
		return "", err
	}

	// A missing sender record means a broken session, not a
	// transient fault.
	if _, err := s.userRepo.GetProfile(ctx, senderKey); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	peerExists, err := s.userRepo.Exists(ctx, peerKey)
	if err != nil {
		return "", err
	}
	if !peerExists {
		return "", ErrUserNotFound
	}

	conversationID := conversationIDPrefix + first.ID
	latest := models.LatestMessage{
		Preview: first.PreviewText(),
		SentAt:  first.SentAt,
		IsRead:  false,
	}

	if err := s.conversationRepo.AppendOrCreate(ctx, senderKey, models.ConversationSummary{
		ID:      conversationID,
		PeerKey: peerKey,
		Latest:  latest,
	}); err != nil {
		return "", fmt.Errorf("append sender index: %w", err)
	}

	if err := s.conversationRepo.AppendOrCreate(ctx, peerKey, models.ConversationSummary{
		ID:      conversationID,
		PeerKey: senderKey,
		Latest:  latest,
	}); err != nil {
		return "", fmt.Errorf("%w: peer index write failed: %v", ErrInconsistent, err)
	}

	if err := s.messageRepo.Append(ctx, conversationID, first); err != nil {
		return "", fmt.Errorf("%w: message log create failed: %v", ErrInconsistent, err)
	}

	return conversationID, nil
}

// SendMessage appends a message to an existing conversation and then
// refreshes the latest-message summary in each participant's own index.
// The writes are independent; the operation is terminal on the first
// failure and performs no rollback.
func (s *ChatService) SendMessage(
	ctx context.Context,
	senderKey string,
	conversationID string,
	message models.Message,
) (*ChatDelivery, error) {
	senderKey = utils.SafeEmail(strings.TrimSpace(senderKey))
	if senderKey == "" || conversationID == "" {
		return nil, ErrInvalidInput
	}
	if err := validateMessage(&message, senderKey); err != nil {
		return nil, err
	}

	summaries, err := s.conversationRepo.ListForOwner(ctx, senderKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	peerKey := ""
	for _, summary := range summaries {
		if summary.ID == conversationID {
			peerKey = summary.PeerKey
			break
		}
	}
	if peerKey == "" {
		return nil, ErrConversationNotFound
	}

	if err := s.messageRepo.Append(ctx, conversationID, message); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	preview := message.PreviewText()
	if err := s.conversationRepo.UpdateLatest(ctx, senderKey, conversationID, models.LatestMessage{
		Preview: preview,
		SentAt:  message.SentAt,
		IsRead:  true,
	}); err != nil {
		return nil, fmt.Errorf("update sender index: %w", err)
	}

	if err := s.conversationRepo.UpdateLatest(ctx, peerKey, conversationID, models.LatestMessage{
		Preview: preview,
		SentAt:  message.SentAt,
		IsRead:  false,
	}); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("%w: peer index missing %s", ErrInconsistent, conversationID)
		}
		return nil, fmt.Errorf("update peer index: %w", err)
	}

	return &ChatDelivery{
		ConversationID: conversationID,
		Message:        message,
		RecipientKey:   peerKey,
	}, nil
}

// ListConversations returns the owner's conversation summaries.
// ErrNoConversations means the owner has never started a conversation,
// distinct from an empty result.
func (s *ChatService) ListConversations(ctx context.Context, ownerKey string) ([]models.ConversationSummary, error) {
	ownerKey = utils.SafeEmail(strings.TrimSpace(ownerKey))
	if ownerKey == "" {
		return nil, ErrInvalidInput
	}

	summaries, err := s.conversationRepo.ListForOwner(ctx, ownerKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoConversations
	}
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *ChatService) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	if conversationID == "" {
		return nil, ErrInvalidInput
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func validateMessage(message *models.Message, senderKey string) error {
	message.ID = strings.TrimSpace(message.ID)
	if message.ID == "" {
		return ErrInvalidInput
	}
	if message.Kind == "" {
		message.Kind = models.MessageKindText
	}
	if !message.Kind.Valid() {
		return ErrInvalidInput
	}
	if message.Kind == models.MessageKindText && strings.TrimSpace(message.Content) == "" {
		return ErrInvalidInput
	}

	message.SenderKey = senderKey
	message.IsRead = false
	if message.SentAt.IsZero() {
		message.SentAt = time.Now().UTC()
	}
	return nil
}

func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
