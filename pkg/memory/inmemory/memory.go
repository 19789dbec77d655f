// ABOUTME: Transient memory backend backed by process-local maps
// ABOUTME: Satisfies the same contract as the persistent backend

// Package inmemory provides a transient memory backend. It holds all data
// in process-local maps with no synchronization: single process, single
// writer assumed. Connect and Disconnect only flip a flag so callers can
// swap it for the persistent backend without behavioral drift.
package inmemory

import (
	"context"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// Memory is the transient implementation of the memory facade.
type Memory struct {
	connected bool

	agent         *AgentPromptStore
	conversations *ConversationStore
	intents       *IntentStore
	workflows     *WorkflowStore
}

var _ memory.Memory = (*Memory)(nil)

// New creates an empty transient memory.
func New() *Memory {
	return &Memory{
		agent:         NewAgentPromptStore(),
		conversations: NewConversationStore(),
		intents:       NewIntentStore(),
		workflows:     NewWorkflowStore(),
	}
}

// Connect marks the memory as connected.
func (m *Memory) Connect(_ context.Context) error {
	m.connected = true
	return nil
}

// Disconnect marks the memory as disconnected. Data is retained.
func (m *Memory) Disconnect(_ context.Context) error {
	m.connected = false
	return nil
}

// IsConnected reports whether Connect has been called.
func (m *Memory) IsConnected() bool {
	return m.connected
}

// AgentPrompts returns the agent prompt store.
func (m *Memory) AgentPrompts() memory.AgentPromptStore {
	return m.agent
}

// Conversations returns the conversation store.
func (m *Memory) Conversations() memory.ConversationStore {
	return m.conversations
}

// Intents returns the intent store.
func (m *Memory) Intents() memory.IntentStore {
	return m.intents
}

// Workflows returns the workflow store.
func (m *Memory) Workflows() memory.WorkflowStore {
	return m.workflows
}
