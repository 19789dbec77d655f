// ABOUTME: Transient conversation store with composite struct keys
// ABOUTME: Maintains a per-user index for listing without full scans

package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// conversationKey scopes a conversation to its user. Structural equality
// replaces the original's "userId:conversationId" string concatenation.
type conversationKey struct {
	userID         string
	conversationID string
}

type conversationRecord struct {
	meta     memory.ConversationMetadata
	messages []memory.Message
}

// ConversationStore is the transient conversation backend.
type ConversationStore struct {
	conversations map[conversationKey]*conversationRecord
	userIndex     map[string]map[string]struct{}
}

var _ memory.ConversationStore = (*ConversationStore)(nil)

// NewConversationStore creates an empty conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[conversationKey]*conversationRecord),
		userIndex:     make(map[string]map[string]struct{}),
	}
}

func (s *ConversationStore) create(userID, conversationID, title string) *conversationRecord {
	key := conversationKey{userID: userID, conversationID: conversationID}
	now := time.Now().UnixMilli()

	rec := &conversationRecord{
		meta: memory.ConversationMetadata{
			ConversationID: conversationID,
			UserID:         userID,
			Title:          title,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	s.conversations[key] = rec

	if s.userIndex[userID] == nil {
		s.userIndex[userID] = make(map[string]struct{})
	}
	s.userIndex[userID][conversationID] = struct{}{}

	return rec
}

// CreateConversation creates the conversation if absent and returns its
// metadata. An existing conversation is left untouched.
func (s *ConversationStore) CreateConversation(_ context.Context, userID, conversationID, title string) (*memory.ConversationMetadata, error) {
	key := conversationKey{userID: userID, conversationID: conversationID}

	rec, ok := s.conversations[key]
	if !ok {
		rec = s.create(userID, conversationID, title)
	}

	meta := rec.meta
	return &meta, nil
}

// GetConversation returns the conversation with messages sorted by
// (timestamp, insertion order), or ok=false when unknown.
func (s *ConversationStore) GetConversation(_ context.Context, userID, conversationID string) (*memory.Conversation, bool, error) {
	key := conversationKey{userID: userID, conversationID: conversationID}

	rec, ok := s.conversations[key]
	if !ok {
		return nil, false, nil
	}

	messages := make([]memory.Message, len(rec.messages))
	copy(messages, rec.messages)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	return &memory.Conversation{
		ConversationID: rec.meta.ConversationID,
		UserID:         rec.meta.UserID,
		Title:          rec.meta.Title,
		CreatedAt:      rec.meta.CreatedAt,
		UpdatedAt:      rec.meta.UpdatedAt,
		Messages:       messages,
	}, true, nil
}

// AddMessages appends messages in order, assigning ids where missing, and
// refreshes UpdatedAt. A missing conversation is auto-created with an
// empty title.
func (s *ConversationStore) AddMessages(_ context.Context, userID, conversationID string, messages []memory.Message) error {
	for _, msg := range messages {
		if len(msg.Content.Parts) == 0 {
			return &memory.ValidationError{Field: "content", Reason: "must have at least one part"}
		}
	}

	key := conversationKey{userID: userID, conversationID: conversationID}

	// Caller-supplied ids must stay unique within the conversation,
	// across the batch and the stored messages. Checked before any write
	// so a rejected batch leaves no trace.
	seen := make(map[string]struct{})
	if rec, ok := s.conversations[key]; ok {
		for _, msg := range rec.messages {
			seen[msg.MessageID] = struct{}{}
		}
	}
	for _, msg := range messages {
		if msg.MessageID == "" {
			continue
		}
		if _, dup := seen[msg.MessageID]; dup {
			return &memory.ValidationError{Field: "messageId", Reason: "already exists in conversation"}
		}
		seen[msg.MessageID] = struct{}{}
	}

	rec, ok := s.conversations[key]
	if !ok {
		rec = s.create(userID, conversationID, "")
	}

	maxTS := rec.meta.UpdatedAt
	for _, msg := range messages {
		if msg.MessageID == "" {
			msg.MessageID = uuid.NewString()
		}
		rec.messages = append(rec.messages, msg)
		if msg.Timestamp > maxTS {
			maxTS = msg.Timestamp
		}
	}

	if now := time.Now().UnixMilli(); now > maxTS {
		maxTS = now
	}
	rec.meta.UpdatedAt = maxTS

	return nil
}

// DeleteConversation removes the conversation and its index entry.
// Deleting an absent conversation is not an error.
func (s *ConversationStore) DeleteConversation(_ context.Context, userID, conversationID string) error {
	key := conversationKey{userID: userID, conversationID: conversationID}

	delete(s.conversations, key)
	if idx, ok := s.userIndex[userID]; ok {
		delete(idx, conversationID)
	}

	return nil
}

// ListConversations returns the user's conversations sorted by UpdatedAt
// descending; empty for unknown users.
func (s *ConversationStore) ListConversations(_ context.Context, userID string) ([]memory.ConversationMetadata, error) {
	idx := s.userIndex[userID]

	list := make([]memory.ConversationMetadata, 0, len(idx))
	for conversationID := range idx {
		key := conversationKey{userID: userID, conversationID: conversationID}
		if rec, ok := s.conversations[key]; ok {
			list = append(list, rec.meta)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt > list[j].UpdatedAt
	})

	return list, nil
}
