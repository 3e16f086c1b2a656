package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
	"github.com/vietvuong1994/SwiftMessenger/internal/kv/memory"
	"github.com/vietvuong1994/SwiftMessenger/internal/models"
)

func TestAppendCreatesLogWithFirstMessage(t *testing.T) {
	repo := NewMessageRepository(memory.New())
	ctx := context.Background()

	message := models.Message{ID: "m1", Kind: models.MessageKindText, Content: "hi", SenderKey: "a-x-com"}
	if err := repo.Append(ctx, "conversation_m1", message); err != nil {
		t.Fatalf("Append: %v", err)
	}

	messages, err := repo.ListByConversation(ctx, "conversation_m1")
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != "m1" || messages[0].Content != "hi" {
		t.Fatalf("unexpected log: %+v", messages)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	repo := NewMessageRepository(memory.New())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		message := models.Message{
			ID:      fmt.Sprintf("m%d", i+1),
			Kind:    models.MessageKindText,
			Content: fmt.Sprintf("message %d", i+1),
		}
		if err := repo.Append(ctx, "conversation_m1", message); err != nil {
			t.Fatalf("Append %d: %v", i+1, err)
		}
	}

	messages, err := repo.ListByConversation(ctx, "conversation_m1")
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	for i, message := range messages {
		if want := fmt.Sprintf("m%d", i+1); message.ID != want {
			t.Fatalf("message %d out of append order: got %s want %s", i, message.ID, want)
		}
	}
}

func TestListByConversationNotFound(t *testing.T) {
	repo := NewMessageRepository(memory.New())

	_, err := repo.ListByConversation(context.Background(), "conversation_missing")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing log, got %v", err)
	}
}
