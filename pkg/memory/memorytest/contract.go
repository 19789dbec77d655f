// ABOUTME: Reusable contract test suites for memory backends
// ABOUTME: Transient and persistent stores must pass the same suites

// Package memorytest verifies that a backend satisfies the storage
// contract. Both backends run these suites, so timing-independent
// semantics stay identical across them.
package memorytest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

func textMessage(role memory.MessageRole, text string, ts int64) memory.Message {
	return memory.Message{
		Role:      role,
		Content:   memory.MessageContent{Type: "text", Parts: []any{text}},
		Timestamp: ts,
	}
}

// RunConversationContract exercises the ConversationStore contract.
// The factory must return a store backed by fresh or isolated state.
func RunConversationContract(t *testing.T, factory func(t *testing.T) memory.ConversationStore) {
	ctx := context.Background()

	t.Run("CreateIsIdempotent", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		first, err := store.CreateConversation(ctx, userID, "t1", "Hello")
		if err != nil {
			t.Fatalf("Failed to create conversation: %v", err)
		}

		second, err := store.CreateConversation(ctx, userID, "t1", "Renamed")
		if err != nil {
			t.Fatalf("Second create failed: %v", err)
		}

		if second.Title != "Hello" {
			t.Errorf("Expected title Hello preserved, got %q", second.Title)
		}
		if second.CreatedAt != first.CreatedAt {
			t.Errorf("Second create altered CreatedAt: %d != %d", second.CreatedAt, first.CreatedAt)
		}

		list, err := store.ListConversations(ctx, userID)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("Expected 1 conversation, got %d", len(list))
		}
	})

	t.Run("AppendOrderPreserved", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		if _, err := store.CreateConversation(ctx, userID, "t1", "Hello"); err != nil {
			t.Fatalf("Failed to create conversation: %v", err)
		}

		msgs := []memory.Message{
			textMessage(memory.RoleUser, "hi", 100),
			textMessage(memory.RoleModel, "hi back", 150),
		}
		if err := store.AddMessages(ctx, userID, "t1", msgs); err != nil {
			t.Fatalf("Failed to add messages: %v", err)
		}

		conv, ok, err := store.GetConversation(ctx, userID, "t1")
		if err != nil {
			t.Fatalf("Failed to get conversation: %v", err)
		}
		if !ok {
			t.Fatalf("Expected conversation to exist")
		}

		if len(conv.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(conv.Messages))
		}
		if conv.Messages[0].Role != memory.RoleUser || conv.Messages[1].Role != memory.RoleModel {
			t.Errorf("Messages out of order: %v then %v", conv.Messages[0].Role, conv.Messages[1].Role)
		}
		if conv.Messages[0].MessageID == "" || conv.Messages[1].MessageID == "" {
			t.Errorf("Expected message ids to be assigned")
		}
		if conv.UpdatedAt < 150 {
			t.Errorf("Expected UpdatedAt >= 150, got %d", conv.UpdatedAt)
		}
	})

	t.Run("EqualTimestampsKeepInsertionOrder", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		if _, err := store.CreateConversation(ctx, userID, "t1", ""); err != nil {
			t.Fatalf("Failed to create conversation: %v", err)
		}

		msgs := []memory.Message{
			textMessage(memory.RoleUser, "first", 500),
			textMessage(memory.RoleUser, "second", 500),
			textMessage(memory.RoleUser, "third", 500),
		}
		if err := store.AddMessages(ctx, userID, "t1", msgs); err != nil {
			t.Fatalf("Failed to add messages: %v", err)
		}

		conv, ok, err := store.GetConversation(ctx, userID, "t1")
		if err != nil || !ok {
			t.Fatalf("Failed to get conversation: ok=%v err=%v", ok, err)
		}

		want := []string{"first", "second", "third"}
		for i, m := range conv.Messages {
			if m.Content.Parts[0] != any(want[i]) {
				t.Errorf("Position %d: expected %q, got %v", i, want[i], m.Content.Parts[0])
			}
		}
	})

	t.Run("AutoCreateOnAppend", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		msgs := []memory.Message{textMessage(memory.RoleUser, "hi", 100)}
		if err := store.AddMessages(ctx, userID, "fresh", msgs); err != nil {
			t.Fatalf("Append to missing conversation should auto-create: %v", err)
		}

		conv, ok, err := store.GetConversation(ctx, userID, "fresh")
		if err != nil || !ok {
			t.Fatalf("Expected auto-created conversation: ok=%v err=%v", ok, err)
		}
		if len(conv.Messages) != 1 {
			t.Errorf("Expected 1 message, got %d", len(conv.Messages))
		}
	})

	t.Run("EmptyContentRejected", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		bad := []memory.Message{{
			Role:      memory.RoleUser,
			Content:   memory.MessageContent{Type: "text"},
			Timestamp: 100,
		}}
		err := store.AddMessages(ctx, userID, "t1", bad)
		if !memory.IsValidation(err) {
			t.Errorf("Expected ValidationError for empty content parts, got %v", err)
		}
	})

	t.Run("DuplicateMessageIDRejected", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		first := textMessage(memory.RoleUser, "hi", 100)
		first.MessageID = "m1"
		if err := store.AddMessages(ctx, userID, "t1", []memory.Message{first}); err != nil {
			t.Fatalf("Failed to add message: %v", err)
		}

		dup := textMessage(memory.RoleUser, "again", 200)
		dup.MessageID = "m1"
		err := store.AddMessages(ctx, userID, "t1", []memory.Message{dup})
		if !memory.IsValidation(err) {
			t.Errorf("Expected ValidationError for duplicate message id, got %v", err)
		}

		// The same id under another conversation is fine; uniqueness is
		// conversation-scoped.
		other := textMessage(memory.RoleUser, "elsewhere", 300)
		other.MessageID = "m1"
		if err := store.AddMessages(ctx, userID, "t2", []memory.Message{other}); err != nil {
			t.Errorf("Same id in another conversation must be accepted: %v", err)
		}
	})

	t.Run("UserIsolation", func(t *testing.T) {
		store := factory(t)
		user1 := uuid.NewString()
		user2 := uuid.NewString()

		if _, err := store.CreateConversation(ctx, user1, "t1", "mine"); err != nil {
			t.Fatalf("Failed to create: %v", err)
		}
		if _, err := store.CreateConversation(ctx, user2, "t1", "theirs"); err != nil {
			t.Fatalf("Failed to create: %v", err)
		}

		list, err := store.ListConversations(ctx, user1)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 1 || list[0].Title != "mine" {
			t.Errorf("Expected only user1's conversation, got %v", list)
		}

		conv, ok, err := store.GetConversation(ctx, user2, "t1")
		if err != nil || !ok {
			t.Fatalf("Expected user2's conversation: ok=%v err=%v", ok, err)
		}
		if conv.Title != "theirs" {
			t.Errorf("Expected user2's own record, got %q", conv.Title)
		}
	})

	t.Run("ListSortedByUpdatedAtDesc", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		for _, id := range []string{"a", "b", "c"} {
			if _, err := store.CreateConversation(ctx, userID, id, id); err != nil {
				t.Fatalf("Failed to create %s: %v", id, err)
			}
		}

		// Touch "a" last so it must list first.
		far := int64(1) << 50
		if err := store.AddMessages(ctx, userID, "a", []memory.Message{
			textMessage(memory.RoleUser, "bump", far),
		}); err != nil {
			t.Fatalf("Failed to add message: %v", err)
		}

		list, err := store.ListConversations(ctx, userID)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("Expected 3 conversations, got %d", len(list))
		}
		if list[0].ConversationID != "a" {
			t.Errorf("Expected most recently updated first, got %s", list[0].ConversationID)
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].UpdatedAt < list[i].UpdatedAt {
				t.Errorf("List not sorted by UpdatedAt desc at %d", i)
			}
		}
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		store := factory(t)
		userID := uuid.NewString()

		if _, err := store.CreateConversation(ctx, userID, "t1", "Hello"); err != nil {
			t.Fatalf("Failed to create: %v", err)
		}
		if err := store.AddMessages(ctx, userID, "t1", []memory.Message{
			textMessage(memory.RoleUser, "hi", 100),
		}); err != nil {
			t.Fatalf("Failed to add message: %v", err)
		}

		if err := store.DeleteConversation(ctx, userID, "t1"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if err := store.DeleteConversation(ctx, userID, "t1"); err != nil {
			t.Errorf("Deleting an absent conversation must not error: %v", err)
		}

		_, ok, err := store.GetConversation(ctx, userID, "t1")
		if err != nil {
			t.Fatalf("Get after delete failed: %v", err)
		}
		if ok {
			t.Errorf("Expected conversation gone after delete")
		}

		list, err := store.ListConversations(ctx, userID)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected empty list after delete, got %d", len(list))
		}
	})

	t.Run("UnknownUserListsEmpty", func(t *testing.T) {
		store := factory(t)

		list, err := store.ListConversations(ctx, uuid.NewString())
		if err != nil {
			t.Fatalf("Listing for unknown user must not error: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected empty list, got %d", len(list))
		}
	})
}

// RunIntentContract exercises the IntentStore contract.
func RunIntentContract(t *testing.T, factory func(t *testing.T) memory.IntentStore) {
	ctx := context.Background()

	t.Run("SaveAssignsID", func(t *testing.T) {
		store := factory(t)

		intent := &memory.Intent{
			Name:        uuid.NewString(),
			Description: "routes greetings",
			Prompt:      "You greet people.",
			Model:       "gpt-4o",
		}
		if err := store.SaveIntent(ctx, intent); err != nil {
			t.Fatalf("Failed to save intent: %v", err)
		}
		if intent.ID == "" {
			t.Fatalf("Expected an id to be assigned")
		}

		got, ok, err := store.GetIntent(ctx, intent.ID)
		if err != nil || !ok {
			t.Fatalf("Failed to get intent: ok=%v err=%v", ok, err)
		}
		if got.Name != intent.Name {
			t.Errorf("Expected name %q, got %q", intent.Name, got.Name)
		}
	})

	t.Run("SaveValidatesInput", func(t *testing.T) {
		store := factory(t)

		err := store.SaveIntent(ctx, &memory.Intent{Description: "no name"})
		if !memory.IsValidation(err) {
			t.Errorf("Expected ValidationError for empty name, got %v", err)
		}

		err = store.SaveIntent(ctx, &memory.Intent{Name: "no-description"})
		if !memory.IsValidation(err) {
			t.Errorf("Expected ValidationError for empty description, got %v", err)
		}
	})

	t.Run("GetByName", func(t *testing.T) {
		store := factory(t)
		name := uuid.NewString()

		intent := &memory.Intent{Name: name, Description: "d"}
		if err := store.SaveIntent(ctx, intent); err != nil {
			t.Fatalf("Failed to save intent: %v", err)
		}

		got, ok, err := store.GetIntentByName(ctx, name)
		if err != nil || !ok {
			t.Fatalf("Failed to get by name: ok=%v err=%v", ok, err)
		}
		if got.ID != intent.ID {
			t.Errorf("Expected id %q, got %q", intent.ID, got.ID)
		}

		_, ok, err = store.GetIntentByName(ctx, uuid.NewString())
		if err != nil {
			t.Fatalf("Unknown name must not error: %v", err)
		}
		if ok {
			t.Errorf("Expected absent result for unknown name")
		}
	})

	t.Run("UpdateUnknownIDFails", func(t *testing.T) {
		store := factory(t)

		err := store.UpdateIntent(ctx, uuid.NewString(), &memory.Intent{Name: "n", Description: "d"})
		if !errors.Is(err, memory.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		store := factory(t)

		intent := &memory.Intent{Name: uuid.NewString(), Description: "d"}
		if err := store.SaveIntent(ctx, intent); err != nil {
			t.Fatalf("Failed to save intent: %v", err)
		}

		updated := *intent
		updated.Description = "updated"
		if err := store.UpdateIntent(ctx, intent.ID, &updated); err != nil {
			t.Fatalf("Failed to update: %v", err)
		}

		got, ok, err := store.GetIntent(ctx, intent.ID)
		if err != nil || !ok {
			t.Fatalf("Failed to get intent: ok=%v err=%v", ok, err)
		}
		if got.Description != "updated" {
			t.Errorf("Expected updated description, got %q", got.Description)
		}

		if err := store.DeleteIntent(ctx, intent.ID); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if err := store.DeleteIntent(ctx, intent.ID); err != nil {
			t.Errorf("Deleting an unknown id must be a no-op: %v", err)
		}

		_, ok, err = store.GetIntent(ctx, intent.ID)
		if err != nil {
			t.Fatalf("Get after delete failed: %v", err)
		}
		if ok {
			t.Errorf("Expected intent gone after delete")
		}
	})
}

// RunWorkflowContract exercises the WorkflowStore contract.
func RunWorkflowContract(t *testing.T, factory func(t *testing.T) memory.WorkflowStore) {
	ctx := context.Background()

	t.Run("OwnershipEnforced", func(t *testing.T) {
		store := factory(t)
		id := uuid.NewString()

		wf := &memory.Workflow{
			WorkflowID: id,
			UserID:     "u1",
			Title:      "T",
			Active:     false,
			Content:    "steps",
		}
		if _, err := store.CreateWorkflow(ctx, wf); err != nil {
			t.Fatalf("Failed to create workflow: %v", err)
		}

		title := "hijacked"
		err := store.UpdateWorkflow(ctx, id, memory.WorkflowUpdate{UserID: "u2", Title: &title})
		if !errors.Is(err, memory.ErrUnauthorized) {
			t.Errorf("Expected ErrUnauthorized for foreign update, got %v", err)
		}

		got, ok, _ := store.GetWorkflow(ctx, id)
		if !ok || got.Title != "T" {
			t.Errorf("Foreign update must leave the workflow unchanged, got %+v", got)
		}

		active := true
		if err := store.UpdateWorkflow(ctx, id, memory.WorkflowUpdate{UserID: "u1", Active: &active}); err != nil {
			t.Fatalf("Owner update failed: %v", err)
		}
		got, ok, _ = store.GetWorkflow(ctx, id)
		if !ok || !got.Active {
			t.Errorf("Expected owner update applied, got %+v", got)
		}
	})

	t.Run("DeleteIsSilentForNonOwner", func(t *testing.T) {
		store := factory(t)
		id := uuid.NewString()

		wf := &memory.Workflow{WorkflowID: id, UserID: "u1", Title: "T", Content: "..."}
		if _, err := store.CreateWorkflow(ctx, wf); err != nil {
			t.Fatalf("Failed to create workflow: %v", err)
		}

		if err := store.DeleteWorkflow(ctx, id, "u2"); err != nil {
			t.Errorf("Non-owner delete must be a silent no-op: %v", err)
		}
		if _, ok, _ := store.GetWorkflow(ctx, id); !ok {
			t.Fatalf("Workflow must survive non-owner delete")
		}

		if err := store.DeleteWorkflow(ctx, id, "u1"); err != nil {
			t.Fatalf("Owner delete failed: %v", err)
		}
		if _, ok, _ := store.GetWorkflow(ctx, id); ok {
			t.Errorf("Expected workflow gone after owner delete")
		}

		if err := store.DeleteWorkflow(ctx, id, "u1"); err != nil {
			t.Errorf("Deleting an absent workflow must not error: %v", err)
		}
	})

	t.Run("TemplatesAreImmutable", func(t *testing.T) {
		store := factory(t)
		id := uuid.NewString()

		tpl := &memory.Workflow{WorkflowID: id, Title: "Shared", Content: "..."}
		if _, err := store.CreateWorkflow(ctx, tpl); err != nil {
			t.Fatalf("Failed to create template: %v", err)
		}

		title := "mine now"
		err := store.UpdateWorkflow(ctx, id, memory.WorkflowUpdate{UserID: "u1", Title: &title})
		if !errors.Is(err, memory.ErrUnauthorized) {
			t.Errorf("Expected ErrUnauthorized updating a template, got %v", err)
		}

		if err := store.DeleteWorkflow(ctx, id, "u1"); err != nil {
			t.Errorf("Template delete by a user must be a silent no-op: %v", err)
		}
		if _, ok, _ := store.GetWorkflow(ctx, id); !ok {
			t.Errorf("Template must survive user delete")
		}
	})

	t.Run("UpdateUnknownIDFails", func(t *testing.T) {
		store := factory(t)

		title := "x"
		err := store.UpdateWorkflow(ctx, uuid.NewString(), memory.WorkflowUpdate{UserID: "u1", Title: &title})
		if !errors.Is(err, memory.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListUnionsTemplatesAndOwn", func(t *testing.T) {
		store := factory(t)
		user1 := uuid.NewString()
		user2 := uuid.NewString()

		tplID := uuid.NewString()
		ownID := uuid.NewString()
		otherID := uuid.NewString()

		for _, wf := range []*memory.Workflow{
			{WorkflowID: tplID, Title: "template", Content: "..."},
			{WorkflowID: ownID, UserID: user1, Title: "own", Content: "..."},
			{WorkflowID: otherID, UserID: user2, Title: "other", Content: "..."},
		} {
			if _, err := store.CreateWorkflow(ctx, wf); err != nil {
				t.Fatalf("Failed to create %s: %v", wf.Title, err)
			}
		}

		ids := func(wfs []memory.Workflow) map[string]bool {
			m := make(map[string]bool)
			for _, wf := range wfs {
				if m[wf.WorkflowID] {
					t.Errorf("Duplicate workflow %s in listing", wf.WorkflowID)
				}
				m[wf.WorkflowID] = true
			}
			return m
		}

		anon, err := store.ListWorkflows(ctx, "")
		if err != nil {
			t.Fatalf("Failed to list templates: %v", err)
		}
		anonIDs := ids(anon)
		if !anonIDs[tplID] {
			t.Errorf("Anonymous listing must include templates")
		}
		if anonIDs[ownID] || anonIDs[otherID] {
			t.Errorf("Anonymous listing must not include owned workflows")
		}

		mine, err := store.ListWorkflows(ctx, user1)
		if err != nil {
			t.Fatalf("Failed to list for user: %v", err)
		}
		mineIDs := ids(mine)
		if !mineIDs[tplID] || !mineIDs[ownID] {
			t.Errorf("User listing must union templates and own workflows: %v", mineIDs)
		}
		if mineIDs[otherID] {
			t.Errorf("User listing must not include other users' workflows")
		}
	})
}

// RunAgentPromptContract exercises the AgentPromptStore contract.
func RunAgentPromptContract(t *testing.T, factory func(t *testing.T) memory.AgentPromptStore) {
	ctx := context.Background()

	t.Run("UnsetPromptIsEmpty", func(t *testing.T) {
		store := factory(t)

		got, err := store.GetPrompt(ctx, memory.PromptAggregate)
		if err != nil {
			t.Fatalf("Failed to get prompt: %v", err)
		}
		if got != "" {
			t.Errorf("Expected empty prompt, got %q", got)
		}
	})

	t.Run("UpsertAndRead", func(t *testing.T) {
		store := factory(t)

		if err := store.UpdatePrompt(ctx, memory.PromptAgent, "You are helpful."); err != nil {
			t.Fatalf("Failed to update prompt: %v", err)
		}
		if err := store.UpdatePrompt(ctx, memory.PromptAgent, "You are terse."); err != nil {
			t.Fatalf("Failed to update prompt again: %v", err)
		}

		got, err := store.GetPrompt(ctx, memory.PromptAgent)
		if err != nil {
			t.Fatalf("Failed to get prompt: %v", err)
		}
		if got != "You are terse." {
			t.Errorf("Expected latest prompt, got %q", got)
		}
	})

	t.Run("EmptyIDRejected", func(t *testing.T) {
		store := factory(t)

		if err := store.UpdatePrompt(ctx, "", "text"); !memory.IsValidation(err) {
			t.Errorf("Expected ValidationError for empty prompt id, got %v", err)
		}
	})
}
