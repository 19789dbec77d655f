// ABOUTME: Document shapes and indexes for the persistent backend
// ABOUTME: One collection per entity type, composite lookups indexed

package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Logical collection names.
const (
	colAgentPrompts  = "agent_prompts"
	colConversations = "conversations"
	colMessages      = "messages"
	colIntents       = "intents"
	colWorkflows     = "workflows"
)

type promptDoc struct {
	ID     string `bson:"id"`
	Prompt string `bson:"prompt"`
}

type conversationDoc struct {
	UserID         string `bson:"userId"`
	ConversationID string `bson:"conversationId"`
	Title          string `bson:"title"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`

	// MessageSeq is the per-conversation append counter; atomically
	// incremented on every batch so equal-timestamp messages keep
	// insertion order.
	MessageSeq int64 `bson:"message_seq"`
}

type contentDoc struct {
	Type  string `bson:"type"`
	Parts []any  `bson:"parts"`
}

type messageDoc struct {
	ConversationID string         `bson:"conversationId"`
	UserID         string         `bson:"userId"`
	MessageID      string         `bson:"messageId"`
	Role           string         `bson:"role"`
	Content        contentDoc     `bson:"content"`
	Timestamp      int64          `bson:"timestamp"`
	Seq            int64          `bson:"seq"`
	Metadata       map[string]any `bson:"metadata,omitempty"`
}

func (d *messageDoc) toMessage() memory.Message {
	return memory.Message{
		MessageID: d.MessageID,
		Role:      memory.MessageRole(d.Role),
		Content:   memory.MessageContent{Type: d.Content.Type, Parts: d.Content.Parts},
		Timestamp: d.Timestamp,
		Metadata:  d.Metadata,
	}
}

type intentDoc struct {
	ID          string `bson:"id"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	Prompt      string `bson:"prompt,omitempty"`
	Model       string `bson:"model,omitempty"`
}

func (d *intentDoc) toIntent() memory.Intent {
	return memory.Intent{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Prompt:      d.Prompt,
		Model:       d.Model,
	}
}

type workflowDoc struct {
	WorkflowID  string `bson:"workflowId"`
	UserID      string `bson:"userId,omitempty"`
	Title       string `bson:"title"`
	Description string `bson:"description,omitempty"`
	Active      bool   `bson:"active"`
	Content     string `bson:"content"`
}

func (d *workflowDoc) toWorkflow() memory.Workflow {
	return memory.Workflow{
		WorkflowID:  d.WorkflowID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Active:      d.Active,
		Content:     d.Content,
	}
}

// collectionIndexes declares every secondary index the backend relies on.
func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAgentPrompts: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colConversations: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "conversationId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updated_at", Value: -1}}},
		},
		colMessages: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "conversationId", Value: 1}, {Key: "timestamp", Value: 1}, {Key: "seq", Value: 1}}},
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "conversationId", Value: 1}, {Key: "messageId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colIntents: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colWorkflows: {
			{
				Keys:    bson.D{{Key: "workflowId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
}

// ensureIndexes creates the declared indexes. Safe to call on every
// connect; existing indexes are left alone.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, indexes := range collectionIndexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("mongodb: create indexes for %s: %w", name, err)
		}
	}
	return nil
}
