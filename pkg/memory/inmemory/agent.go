// ABOUTME: Transient agent prompt store
// ABOUTME: One text slot per fixed prompt identifier

package inmemory

import (
	"context"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// AgentPromptStore is the transient agent prompt backend.
type AgentPromptStore struct {
	prompts map[memory.PromptID]string
}

var _ memory.AgentPromptStore = (*AgentPromptStore)(nil)

// NewAgentPromptStore creates an empty agent prompt store.
func NewAgentPromptStore() *AgentPromptStore {
	return &AgentPromptStore{prompts: make(map[memory.PromptID]string)}
}

// GetPrompt returns the prompt text for the slot, or "" when unset.
func (s *AgentPromptStore) GetPrompt(_ context.Context, id memory.PromptID) (string, error) {
	return s.prompts[id], nil
}

// UpdatePrompt upserts the prompt text for the slot.
func (s *AgentPromptStore) UpdatePrompt(_ context.Context, id memory.PromptID, prompt string) error {
	if id == "" {
		return &memory.ValidationError{Field: "promptId", Reason: "must not be empty"}
	}
	s.prompts[id] = prompt
	return nil
}
