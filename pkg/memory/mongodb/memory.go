// ABOUTME: Persistent memory backend over a remote MongoDB deployment
// ABOUTME: Explicit lifecycle, all operations routed through the connection manager

// Package mongodb provides the persistent memory backend. Every store
// operation runs through the ConnectionManager's retry wrapper and is
// bounded by the configured per-operation timeout. Instances carry
// explicit Connect/Disconnect lifecycles so tests can construct isolated
// ones; there is no implicit process-wide singleton.
package mongodb

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ainetwork-ai/ain-adk-providers/internal/logger"
	"github.com/ainetwork-ai/ain-adk-providers/internal/metrics"
	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// Memory is the persistent implementation of the memory facade.
type Memory struct {
	cfg  Config
	drv  *mongoDriver
	conn *ConnectionManager
	log  *logger.Logger

	registry *prometheus.Registry

	agent         *AgentPromptStore
	conversations *ConversationStore
	intents       *IntentStore
	workflows     *WorkflowStore
}

var _ memory.Memory = (*Memory)(nil)

// New creates a persistent memory for the given configuration. No
// connection is opened until Connect.
func New(cfg Config) *Memory {
	cfg = cfg.withDefaults()

	log := logger.GetGlobalLogger()
	registry := prometheus.NewRegistry()
	met := metrics.NewMetrics(registry)

	drv := newMongoDriver(cfg)
	conn := NewConnectionManager(drv, cfg, log, met)
	drv.onConnectionLost = conn.HandleConnectionLost

	m := &Memory{
		cfg:      cfg,
		drv:      drv,
		conn:     conn,
		log:      log,
		registry: registry,
	}
	m.agent = &AgentPromptStore{m: m}
	m.conversations = &ConversationStore{m: m}
	m.intents = &IntentStore{m: m}
	m.workflows = &WorkflowStore{m: m}

	return m
}

// Connect opens the connection and provisions collection indexes.
func (m *Memory) Connect(ctx context.Context) error {
	if err := m.conn.Connect(ctx); err != nil {
		return err
	}
	return ensureIndexes(ctx, m.drv.database())
}

// Disconnect closes the connection.
func (m *Memory) Disconnect(ctx context.Context) error {
	return m.conn.Disconnect(ctx)
}

// IsConnected reports whether the connection is live.
func (m *Memory) IsConnected() bool {
	return m.conn.IsConnected()
}

// Connection returns the connection manager, exposed for administrative
// tooling and tests.
func (m *Memory) Connection() *ConnectionManager {
	return m.conn
}

// MetricsRegistry returns the registry holding this instance's metrics,
// for the host process to mount on its metrics endpoint.
func (m *Memory) MetricsRegistry() *prometheus.Registry {
	return m.registry
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

// collection returns a handle in the configured database.
func (m *Memory) collection(name string) *mongo.Collection {
	return m.drv.database().Collection(name)
}

// operationCtx bounds a store operation at the query level. Timeouts
// surface as failures; there is no mid-flight cancellation signal to the
// remote store.
func (m *Memory) operationCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.cfg.OperationTimeout)
}
