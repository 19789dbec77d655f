// ABOUTME: Tests for the transient memory backend
// ABOUTME: Runs the shared contract suites against map-backed stores

package inmemory

import (
	"context"
	"testing"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory/memorytest"
)

func TestConversationContract(t *testing.T) {
	memorytest.RunConversationContract(t, func(t *testing.T) memory.ConversationStore {
		return NewConversationStore()
	})
}

func TestIntentContract(t *testing.T) {
	memorytest.RunIntentContract(t, func(t *testing.T) memory.IntentStore {
		return NewIntentStore()
	})
}

func TestWorkflowContract(t *testing.T) {
	memorytest.RunWorkflowContract(t, func(t *testing.T) memory.WorkflowStore {
		return NewWorkflowStore()
	})
}

func TestAgentPromptContract(t *testing.T) {
	memorytest.RunAgentPromptContract(t, func(t *testing.T) memory.AgentPromptStore {
		return NewAgentPromptStore()
	})
}

func TestConnectFlag(t *testing.T) {
	m := New()
	ctx := context.Background()

	if m.IsConnected() {
		t.Errorf("Expected disconnected before Connect")
	}
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !m.IsConnected() {
		t.Errorf("Expected connected after Connect")
	}
	if err := m.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if m.IsConnected() {
		t.Errorf("Expected disconnected after Disconnect")
	}
}

func TestDataSurvivesDisconnect(t *testing.T) {
	m := New()
	ctx := context.Background()

	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := m.AgentPrompts().UpdatePrompt(ctx, memory.PromptAgent, "keep me"); err != nil {
		t.Fatalf("Failed to update prompt: %v", err)
	}
	if err := m.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}

	got, err := m.AgentPrompts().GetPrompt(ctx, memory.PromptAgent)
	if err != nil {
		t.Fatalf("Failed to get prompt: %v", err)
	}
	if got != "keep me" {
		t.Errorf("Expected data retained across disconnect, got %q", got)
	}
}
