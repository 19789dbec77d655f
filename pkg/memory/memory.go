// ABOUTME: Store contract shared by every memory backend
// ABOUTME: Transient and persistent implementations satisfy the same interfaces

// Package memory defines the storage contract for the conversational-agent
// platform: agent prompts, conversation threads, the intent catalog and
// user-owned workflows. Backends differ only in durability; callers depend
// on these interfaces, never on a concrete implementation.
package memory

import "context"

// AgentPromptStore holds the deployment's agent prompt texts, keyed by a
// fixed set of PromptID slots.
type AgentPromptStore interface {
	// GetPrompt returns the prompt text for the slot, or "" when unset.
	GetPrompt(ctx context.Context, id PromptID) (string, error)

	// UpdatePrompt upserts the prompt text for the slot.
	UpdatePrompt(ctx context.Context, id PromptID, prompt string) error
}

// ConversationStore manages conversation containers and their ordered
// messages, keyed by (userID, conversationID).
type ConversationStore interface {
	// CreateConversation creates the conversation if it does not exist and
	// returns its metadata. Idempotent: an existing conversation is left
	// untouched, including CreatedAt.
	CreateConversation(ctx context.Context, userID, conversationID, title string) (*ConversationMetadata, error)

	// GetConversation returns the conversation with its messages in
	// (timestamp, sequence) order, or ok=false when unknown.
	GetConversation(ctx context.Context, userID, conversationID string) (*Conversation, bool, error)

	// AddMessages appends messages in the order given, assigning each a
	// unique id when missing, and refreshes UpdatedAt. Message ids are
	// unique within the conversation; a caller-supplied duplicate fails
	// with a ValidationError. A missing conversation is auto-created
	// with an empty title.
	AddMessages(ctx context.Context, userID, conversationID string, messages []Message) error

	// DeleteConversation removes the conversation, its messages and its
	// user-index entry. Deleting an absent conversation is not an error.
	DeleteConversation(ctx context.Context, userID, conversationID string) error

	// ListConversations returns the user's conversations sorted by
	// UpdatedAt descending; empty for unknown users.
	ListConversations(ctx context.Context, userID string) ([]ConversationMetadata, error)
}

// IntentStore is the catalog of named routing intents.
type IntentStore interface {
	// GetIntent returns the intent by id, or ok=false when unknown.
	GetIntent(ctx context.Context, id string) (*Intent, bool, error)

	// GetIntentByName returns the intent by exact name match, or ok=false.
	GetIntentByName(ctx context.Context, name string) (*Intent, bool, error)

	// SaveIntent stores a new intent, assigning an id when missing.
	// Fails with a ValidationError when Name or Description is empty.
	SaveIntent(ctx context.Context, intent *Intent) error

	// UpdateIntent replaces the intent stored under id. Returns
	// ErrNotFound for an unknown id.
	UpdateIntent(ctx context.Context, id string, intent *Intent) error

	// DeleteIntent removes the intent. Deleting an unknown id is a no-op.
	DeleteIntent(ctx context.Context, id string) error

	// ListIntents returns the full catalog; order is unspecified but
	// stable within a single snapshot.
	ListIntents(ctx context.Context) ([]Intent, error)
}

// WorkflowStore holds automation definitions: shared templates and
// user-owned instances.
type WorkflowStore interface {
	// CreateWorkflow stores the workflow and indexes it under its owner.
	CreateWorkflow(ctx context.Context, workflow *Workflow) (*Workflow, error)

	// GetWorkflow returns the workflow, or ok=false when unknown.
	GetWorkflow(ctx context.Context, workflowID string) (*Workflow, bool, error)

	// UpdateWorkflow applies a partial update. Returns ErrNotFound for an
	// unknown id and ErrUnauthorized when updates.UserID does not match
	// the stored owner; templates cannot be updated through this path.
	UpdateWorkflow(ctx context.Context, workflowID string, updates WorkflowUpdate) error

	// DeleteWorkflow removes the workflow only when userID matches the
	// stored owner; otherwise it is a silent no-op.
	DeleteWorkflow(ctx context.Context, workflowID, userID string) error

	// ListWorkflows returns every template workflow, plus the given
	// user's own workflows when userID is non-empty.
	ListWorkflows(ctx context.Context, userID string) ([]Workflow, error)
}

// Memory is the facade consumed by the orchestration engine and
// administrative tooling.
type Memory interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	AgentPrompts() AgentPromptStore
	Conversations() ConversationStore
	Intents() IntentStore
	Workflows() WorkflowStore
}
