// ABOUTME: Persistent agent prompt store
// ABOUTME: One {id, prompt} document per fixed prompt slot

package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// AgentPromptStore is the persistent agent prompt backend.
type AgentPromptStore struct {
	m *Memory
}

var _ memory.AgentPromptStore = (*AgentPromptStore)(nil)

// GetPrompt returns the prompt text for the slot, or "" when unset.
func (s *AgentPromptStore) GetPrompt(ctx context.Context, id memory.PromptID) (string, error) {
	var prompt string

	err := s.m.conn.ExecuteWithRetry(ctx, "getPrompt", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		var doc promptDoc
		err := s.m.collection(colAgentPrompts).
			FindOne(ctx, bson.D{{Key: "id", Value: string(id)}}).
			Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}

		prompt = doc.Prompt
		return nil
	})

	return prompt, err
}

// UpdatePrompt upserts the prompt text for the slot.
func (s *AgentPromptStore) UpdatePrompt(ctx context.Context, id memory.PromptID, prompt string) error {
	if id == "" {
		return &memory.ValidationError{Field: "promptId", Reason: "must not be empty"}
	}

	return s.m.conn.ExecuteWithRetry(ctx, "updatePrompt", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		_, err := s.m.collection(colAgentPrompts).UpdateOne(ctx,
			bson.D{{Key: "id", Value: string(id)}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "prompt", Value: prompt}}}},
			options.UpdateOne().SetUpsert(true),
		)
		return err
	})
}
