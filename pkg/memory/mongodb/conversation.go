// ABOUTME: Persistent conversation store over conversations and messages collections
// ABOUTME: Composite (userId, conversationId) keys, append counter for stable ordering

package mongodb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// ConversationStore is the persistent conversation backend.
type ConversationStore struct {
	m *Memory
}

var _ memory.ConversationStore = (*ConversationStore)(nil)

func conversationFilter(userID, conversationID string) bson.D {
	return bson.D{
		{Key: "userId", Value: userID},
		{Key: "conversationId", Value: conversationID},
	}
}

// CreateConversation creates the conversation if absent and returns its
// metadata. Idempotent: a concurrent or prior create wins and its
// CreatedAt is preserved.
func (s *ConversationStore) CreateConversation(ctx context.Context, userID, conversationID, title string) (*memory.ConversationMetadata, error) {
	var meta memory.ConversationMetadata

	err := s.m.conn.ExecuteWithRetry(ctx, "createConversation", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		now := nowMillis()
		var doc conversationDoc
		err := s.m.collection(colConversations).FindOneAndUpdate(ctx,
			conversationFilter(userID, conversationID),
			bson.D{{Key: "$setOnInsert", Value: bson.D{
				{Key: "title", Value: title},
				{Key: "created_at", Value: now},
				{Key: "updated_at", Value: now},
				{Key: "message_seq", Value: int64(0)},
			}}},
			options.FindOneAndUpdate().
				SetUpsert(true).
				SetReturnDocument(options.After),
		).Decode(&doc)
		if err != nil {
			return err
		}

		meta = memory.ConversationMetadata{
			ConversationID: doc.ConversationID,
			UserID:         doc.UserID,
			Title:          doc.Title,
			CreatedAt:      doc.CreatedAt,
			UpdatedAt:      doc.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &meta, nil
}

// GetConversation returns the conversation with its messages in
// (timestamp, seq) order, or ok=false when unknown.
func (s *ConversationStore) GetConversation(ctx context.Context, userID, conversationID string) (*memory.Conversation, bool, error) {
	var conv *memory.Conversation

	err := s.m.conn.ExecuteWithRetry(ctx, "getConversation", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		var doc conversationDoc
		err := s.m.collection(colConversations).
			FindOne(ctx, conversationFilter(userID, conversationID)).
			Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}

		cursor, err := s.m.collection(colMessages).Find(ctx,
			conversationFilter(userID, conversationID),
			options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "seq", Value: 1}}),
		)
		if err != nil {
			return err
		}

		var msgDocs []messageDoc
		if err := cursor.All(ctx, &msgDocs); err != nil {
			return err
		}

		s.m.log.StoreLogger("conversation").Debug("Loaded conversation").
			Str("conversationId", conversationID).
			Int("messages", len(msgDocs)).
			Send()

		messages := make([]memory.Message, 0, len(msgDocs))
		for i := range msgDocs {
			messages = append(messages, msgDocs[i].toMessage())
		}

		conv = &memory.Conversation{
			ConversationID: doc.ConversationID,
			UserID:         doc.UserID,
			Title:          doc.Title,
			CreatedAt:      doc.CreatedAt,
			UpdatedAt:      doc.UpdatedAt,
			Messages:       messages,
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return conv, conv != nil, nil
}

// AddMessages appends messages in order, assigning ids where missing, and
// refreshes UpdatedAt. A missing conversation is auto-created with an
// empty title. Sequence numbers come from the conversation document's
// atomically incremented append counter.
func (s *ConversationStore) AddMessages(ctx context.Context, userID, conversationID string, messages []memory.Message) error {
	if len(messages) == 0 {
		return nil
	}
	for _, msg := range messages {
		if len(msg.Content.Parts) == 0 {
			return &memory.ValidationError{Field: "content", Reason: "must have at least one part"}
		}
	}

	return s.m.conn.ExecuteWithRetry(ctx, "addMessages", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		now := nowMillis()
		updatedAt := now
		for _, msg := range messages {
			if msg.Timestamp > updatedAt {
				updatedAt = msg.Timestamp
			}
		}

		// Claim a sequence range and refresh the metadata in one atomic
		// per-document update; creates the conversation when missing.
		var doc conversationDoc
		err := s.m.collection(colConversations).FindOneAndUpdate(ctx,
			conversationFilter(userID, conversationID),
			bson.D{
				{Key: "$setOnInsert", Value: bson.D{
					{Key: "title", Value: ""},
					{Key: "created_at", Value: now},
				}},
				{Key: "$max", Value: bson.D{{Key: "updated_at", Value: updatedAt}}},
				{Key: "$inc", Value: bson.D{{Key: "message_seq", Value: int64(len(messages))}}},
			},
			options.FindOneAndUpdate().
				SetUpsert(true).
				SetReturnDocument(options.After),
		).Decode(&doc)
		if err != nil {
			return err
		}

		baseSeq := doc.MessageSeq - int64(len(messages))
		docs := make([]any, 0, len(messages))
		for i, msg := range messages {
			messageID := msg.MessageID
			if messageID == "" {
				messageID = uuid.NewString()
			}
			docs = append(docs, messageDoc{
				ConversationID: conversationID,
				UserID:         userID,
				MessageID:      messageID,
				Role:           string(msg.Role),
				Content:        contentDoc{Type: msg.Content.Type, Parts: msg.Content.Parts},
				Timestamp:      msg.Timestamp,
				Seq:            baseSeq + int64(i),
				Metadata:       msg.Metadata,
			})
		}

		_, err = s.m.collection(colMessages).InsertMany(ctx, docs)
		if mongo.IsDuplicateKeyError(err) {
			return &memory.ValidationError{Field: "messageId", Reason: "already exists in conversation"}
		}
		return err
	})
}

// DeleteConversation removes the conversation and all its messages.
// Deleting an absent conversation is not an error.
func (s *ConversationStore) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	return s.m.conn.ExecuteWithRetry(ctx, "deleteConversation", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		if _, err := s.m.collection(colMessages).DeleteMany(ctx, conversationFilter(userID, conversationID)); err != nil {
			return err
		}
		_, err := s.m.collection(colConversations).DeleteOne(ctx, conversationFilter(userID, conversationID))
		return err
	})
}

// ListConversations returns the user's conversations sorted by UpdatedAt
// descending; empty for unknown users.
func (s *ConversationStore) ListConversations(ctx context.Context, userID string) ([]memory.ConversationMetadata, error) {
	list := make([]memory.ConversationMetadata, 0)

	err := s.m.conn.ExecuteWithRetry(ctx, "listConversations", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		cursor, err := s.m.collection(colConversations).Find(ctx,
			bson.D{{Key: "userId", Value: userID}},
			options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
		)
		if err != nil {
			return err
		}

		var docs []conversationDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}

		for _, doc := range docs {
			list = append(list, memory.ConversationMetadata{
				ConversationID: doc.ConversationID,
				UserID:         doc.UserID,
				Title:          doc.Title,
				CreatedAt:      doc.CreatedAt,
				UpdatedAt:      doc.UpdatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}
