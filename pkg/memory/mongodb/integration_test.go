// ABOUTME: Contract suite against a live MongoDB deployment
// ABOUTME: Skipped unless MONGODB_URI points at a reachable server

package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory/memorytest"
)

// newLiveMemory connects to the server named by MONGODB_URI, using a
// throwaway database that is dropped when the test finishes.
func newLiveMemory(t *testing.T) *Memory {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping live backend tests")
	}

	m := New(Config{
		URI:      uri,
		Database: "ain_adk_test_" + uuid.NewString()[:8],
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to %s: %v", uri, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.drv.database().Drop(ctx); err != nil {
			t.Logf("Failed to drop test database: %v", err)
		}
		if err := m.Disconnect(ctx); err != nil {
			t.Logf("Failed to disconnect: %v", err)
		}
	})

	return m
}

func TestLiveConversationContract(t *testing.T) {
	m := newLiveMemory(t)
	memorytest.RunConversationContract(t, func(t *testing.T) memory.ConversationStore {
		return m.Conversations()
	})
}

func TestLiveIntentContract(t *testing.T) {
	m := newLiveMemory(t)
	memorytest.RunIntentContract(t, func(t *testing.T) memory.IntentStore {
		return m.Intents()
	})
}

func TestLiveWorkflowContract(t *testing.T) {
	m := newLiveMemory(t)
	memorytest.RunWorkflowContract(t, func(t *testing.T) memory.WorkflowStore {
		return m.Workflows()
	})
}

func TestLiveAgentPromptContract(t *testing.T) {
	m := newLiveMemory(t)
	memorytest.RunAgentPromptContract(t, func(t *testing.T) memory.AgentPromptStore {
		return m.AgentPrompts()
	})
}

func TestLiveLifecycle(t *testing.T) {
	m := newLiveMemory(t)

	if !m.IsConnected() {
		t.Fatalf("Expected connected after setup")
	}
	if got := m.Connection().State(); got != StateConnected {
		t.Errorf("Expected state connected, got %v", got)
	}

	ctx := context.Background()
	if err := m.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if m.IsConnected() {
		t.Errorf("Expected disconnected after Disconnect")
	}

	// Reconnect so the cleanup drop still has a live client.
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}
}
