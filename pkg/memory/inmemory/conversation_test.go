// ABOUTME: Backend-specific tests for the transient conversation store
// ABOUTME: Covers struct-key isolation and the user index

package inmemory

import (
	"context"
	"testing"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

func TestSameConversationIDDifferentUsers(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	// The same conversationID under two users must map to two records.
	if _, err := store.CreateConversation(ctx, "u1", "t1", "first"); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	if _, err := store.CreateConversation(ctx, "u2", "t1", "second"); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	if err := store.AddMessages(ctx, "u1", "t1", []memory.Message{{
		Role:      memory.RoleUser,
		Content:   memory.MessageContent{Type: "text", Parts: []any{"only u1"}},
		Timestamp: 100,
	}}); err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}

	conv, ok, err := store.GetConversation(ctx, "u2", "t1")
	if err != nil || !ok {
		t.Fatalf("Failed to get u2 conversation: ok=%v err=%v", ok, err)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("u2's conversation must not see u1's messages, got %d", len(conv.Messages))
	}
}

func TestUserIndexPrunedOnDelete(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	if _, err := store.CreateConversation(ctx, "u1", "t1", ""); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	if _, err := store.CreateConversation(ctx, "u1", "t2", ""); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	if err := store.DeleteConversation(ctx, "u1", "t1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	if _, ok := store.userIndex["u1"]["t1"]; ok {
		t.Errorf("Expected t1 removed from the user index")
	}
	if _, ok := store.userIndex["u1"]["t2"]; !ok {
		t.Errorf("Expected t2 still in the user index")
	}
}

func TestBackdatedAppendStillBumpsUpdatedAt(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	meta, err := store.CreateConversation(ctx, "u1", "t1", "")
	if err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	// Timestamp far in the past; UpdatedAt must not move backwards.
	if err := store.AddMessages(ctx, "u1", "t1", []memory.Message{{
		Role:      memory.RoleUser,
		Content:   memory.MessageContent{Type: "text", Parts: []any{"old"}},
		Timestamp: 100,
	}}); err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}

	conv, ok, err := store.GetConversation(ctx, "u1", "t1")
	if err != nil || !ok {
		t.Fatalf("Failed to get conversation: ok=%v err=%v", ok, err)
	}
	if conv.UpdatedAt < meta.CreatedAt {
		t.Errorf("UpdatedAt moved backwards: %d < %d", conv.UpdatedAt, meta.CreatedAt)
	}
}
