// ABOUTME: Shared data model for the agent memory subsystem
// ABOUTME: Conversations, messages, intents, workflows and prompt identifiers

package memory

// PromptID identifies one of the fixed agent prompt slots.
type PromptID string

// Prompt slots recognized by every AgentPromptStore. The set is fixed per
// deployment; prompts are upserted, never deleted.
const (
	PromptAgent         PromptID = "agent_prompt"
	PromptAggregate     PromptID = "aggregate_prompt"
	PromptGenerateTitle PromptID = "generate_title_prompt"
	PromptSingleTrigger PromptID = "single_trigger_prompt"
	PromptMultiTrigger  PromptID = "multi_trigger_prompt"
	PromptToolSelect    PromptID = "tool_select_prompt"
)

// MessageRole identifies the author of a message.
type MessageRole string

const (
	RoleUser   MessageRole = "USER"
	RoleModel  MessageRole = "MODEL"
	RoleSystem MessageRole = "SYSTEM"
)

// MessageContent is the typed payload of a message. Parts must hold at
// least one element.
type MessageContent struct {
	Type  string
	Parts []any
}

// Message is a single entry in a conversation. MessageID is unique within
// its conversation; an id is assigned on append when left empty.
// Timestamp is epoch milliseconds.
type Message struct {
	MessageID string
	Role      MessageRole
	Content   MessageContent
	Timestamp int64
	Metadata  map[string]any
}

// ConversationMetadata is the listing view of a conversation.
// CreatedAt and UpdatedAt are epoch milliseconds.
type ConversationMetadata struct {
	ConversationID string
	UserID         string
	Title          string
	CreatedAt      int64
	UpdatedAt      int64
}

// Conversation is a titled, ordered sequence of messages scoped to one
// user. ConversationID is unique within a userID scope, not globally.
type Conversation struct {
	ConversationID string
	UserID         string
	Title          string
	CreatedAt      int64
	UpdatedAt      int64
	Messages       []Message
}

// Intent is a named routing target with an associated prompt and model.
type Intent struct {
	ID          string
	Name        string
	Description string
	Prompt      string
	Model       string
}

// Workflow is a stored automation definition. A Workflow without a UserID
// is a shared template: visible to everyone, immutable by ordinary users.
type Workflow struct {
	WorkflowID  string
	UserID      string
	Title       string
	Description string
	Active      bool
	Content     string
}

// IsTemplate reports whether the workflow is a shared, ownerless template.
func (w *Workflow) IsTemplate() bool {
	return w.UserID == ""
}

// WorkflowUpdate carries a partial update to a workflow. UserID is the
// caller's identity and must match the stored owner; nil fields are left
// untouched.
type WorkflowUpdate struct {
	UserID      string
	Title       *string
	Description *string
	Active      *bool
	Content     *string
}
