// ABOUTME: Connection lifecycle state machine with bounded reconnection
// ABOUTME: Wraps store operations so connection failures retry exactly once

package mongodb

import (
	"context"
	"sync"
	"time"

	"github.com/ainetwork-ai/ain-adk-providers/internal/logger"
	"github.com/ainetwork-ai/ain-adk-providers/internal/metrics"
	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// ConnectionState is the lifecycle state of the logical connection.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns the state name.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// ConnectionManager owns the single logical connection to the remote
// store. Storage operations routed through ExecuteWithRetry either run
// against a live connection or fail with a clearly retryable error.
type ConnectionManager struct {
	drv Driver

	maxReconnectAttempts int
	reconnectInterval    time.Duration
	connectTimeout       time.Duration
	ensureWaitTimeout    time.Duration

	// pollInterval paces the bounded wait on an in-flight reconnection.
	pollInterval time.Duration

	log *logger.Logger
	met *metrics.Metrics

	mu                sync.Mutex
	state             ConnectionState
	reconnectAttempts int
	reconnecting      bool
}

// NewConnectionManager creates a manager over drv. It starts in the
// Disconnected state; callers enter via Connect.
func NewConnectionManager(drv Driver, cfg Config, log *logger.Logger, met *metrics.Metrics) *ConnectionManager {
	cfg = cfg.withDefaults()
	return &ConnectionManager{
		drv:                  drv,
		maxReconnectAttempts: cfg.MaxReconnectAttempts,
		reconnectInterval:    cfg.ReconnectInterval,
		connectTimeout:       cfg.ConnectTimeout,
		ensureWaitTimeout:    cfg.EnsureWaitTimeout,
		pollInterval:         100 * time.Millisecond,
		log:                  log.ConnLogger(),
		met:                  met,
		state:                StateDisconnected,
	}
}

// setState transitions the state machine; callers hold mu.
func (m *ConnectionManager) setState(to ConnectionState) {
	if m.state == to {
		return
	}
	m.log.LogStateChange(m.state.String(), to.String())
	m.state = to
	m.met.SetConnectionState(int(to))
}

// State returns the current connection state.
func (m *ConnectionManager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the connection is live.
func (m *ConnectionManager) IsConnected() bool {
	return m.State() == StateConnected
}

// ReconnectAttempts returns the count of consecutive failed reconnection
// attempts; it resets to 0 on any successful connection.
func (m *ConnectionManager) ReconnectAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnectAttempts
}

// Connect opens the connection. A no-op when already connected. When
// another Connect or the reconnect loop is already driving the driver,
// the caller waits on that shared outcome instead of opening a second
// concurrent handshake. On failure the underlying error propagates and
// the state stays Disconnected.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return nil
	}
	if m.state == StateConnecting || m.reconnecting {
		m.mu.Unlock()
		return m.waitForInFlight(ctx)
	}
	m.setState(StateConnecting)
	m.mu.Unlock()

	if err := m.drv.Connect(ctx); err != nil {
		m.mu.Lock()
		m.setState(StateDisconnected)
		m.mu.Unlock()
		m.met.RecordConnect("error")
		m.log.Error("Failed to connect").Err(err).Send()
		return err
	}

	m.mu.Lock()
	m.setState(StateConnected)
	m.reconnectAttempts = 0
	m.mu.Unlock()
	m.met.RecordConnect("ok")
	m.log.Info("Connected").Send()

	return nil
}

// waitForInFlight blocks, polling, while another caller drives the
// driver, then reports the shared outcome. Bounded by the same wait the
// reconnection path uses.
func (m *ConnectionManager) waitForInFlight(ctx context.Context) error {
	deadline := time.Now().Add(m.ensureWaitTimeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		state := m.state
		inFlight := state == StateConnecting || m.reconnecting
		m.mu.Unlock()

		if state == StateConnected {
			return nil
		}
		if !inFlight {
			return &memory.ConnectionError{Op: "connect", Err: memory.ErrNotConnected}
		}

		select {
		case <-ctx.Done():
			return &memory.ConnectionError{Op: "connect", Err: ctx.Err()}
		case <-time.After(m.pollInterval):
		}
	}
	return &memory.ConnectionError{Op: "connect", Err: memory.ErrNotConnected}
}

// Disconnect closes the connection. A no-op when not connected.
func (m *ConnectionManager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := m.drv.Disconnect(ctx); err != nil {
		m.log.Error("Failed to disconnect").Err(err).Send()
		return err
	}

	m.mu.Lock()
	m.setState(StateDisconnected)
	m.mu.Unlock()
	m.log.Info("Disconnected").Send()

	return nil
}

// HandleConnectionLost is the entry point for unsolicited disconnects and
// connection-level driver errors. Reconnection is a single in-flight
// activity: concurrent callers observing Reconnecting wait on the shared
// outcome instead of starting their own loop.
func (m *ConnectionManager) HandleConnectionLost() {
	m.mu.Lock()
	if m.reconnecting {
		m.mu.Unlock()
		return
	}
	m.reconnecting = true
	m.setState(StateReconnecting)
	m.mu.Unlock()

	go m.reconnectLoop()
}

// reconnectLoop drives bounded reconnection: up to maxReconnectAttempts
// attempts separated by reconnectInterval. On exhaustion the manager
// stops retrying until Connect is called again or another loss event
// arrives.
func (m *ConnectionManager) reconnectLoop() {
	for {
		m.mu.Lock()
		if m.state == StateConnected || m.reconnectAttempts >= m.maxReconnectAttempts {
			m.reconnecting = false
			exhausted := m.state != StateConnected
			if exhausted {
				m.setState(StateDisconnected)
			}
			attempts := m.reconnectAttempts
			m.mu.Unlock()

			if exhausted {
				m.met.ReconnectFailuresTotal.Inc()
				m.log.Error("Reconnection attempts exhausted").
					Int("attempts", attempts).
					Send()
			}
			return
		}
		m.reconnectAttempts++
		attempt := m.reconnectAttempts
		m.mu.Unlock()

		m.met.ReconnectAttemptsTotal.Inc()

		ctx, cancel := context.WithTimeout(context.Background(), m.connectTimeout)
		err := m.drv.Connect(ctx)
		cancel()

		m.log.LogReconnectAttempt(attempt, m.maxReconnectAttempts, err)

		if err == nil {
			m.mu.Lock()
			m.setState(StateConnected)
			m.reconnectAttempts = 0
			m.reconnecting = false
			m.mu.Unlock()
			m.log.Info("Reconnection successful").Send()
			return
		}

		if attempt < m.maxReconnectAttempts {
			time.Sleep(m.reconnectInterval)
		}
	}
}

// EnsureConnection guarantees a live connection or fails. When a
// reconnection is in flight it blocks, polling, up to the configured
// bounded wait.
func (m *ConnectionManager) EnsureConnection(ctx context.Context) error {
	m.mu.Lock()
	state := m.state
	reconnecting := m.reconnecting
	m.mu.Unlock()

	if state == StateConnected {
		return nil
	}

	if !reconnecting {
		if err := m.Connect(ctx); err != nil {
			if memory.IsConnection(err) {
				return err
			}
			return &memory.ConnectionError{Op: "connect", Err: err}
		}
		return nil
	}

	deadline := time.Now().Add(m.ensureWaitTimeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		state = m.state
		reconnecting = m.reconnecting
		m.mu.Unlock()

		if state == StateConnected {
			return nil
		}
		if !reconnecting {
			break
		}

		select {
		case <-ctx.Done():
			return &memory.ConnectionError{Op: "ensureConnection", Err: ctx.Err()}
		case <-time.After(m.pollInterval):
		}
	}

	if !m.IsConnected() {
		return &memory.ConnectionError{Op: "ensureConnection", Err: memory.ErrNotConnected}
	}
	return nil
}

// ExecuteWithRetry runs op against a live connection. A connection-class
// failure triggers one reconnection and exactly one retry; a second
// failure of any kind propagates unmodified. Timeouts and application
// errors are never retried.
func (m *ConnectionManager) ExecuteWithRetry(ctx context.Context, name string, op func(ctx context.Context) error) error {
	if err := m.EnsureConnection(ctx); err != nil {
		m.met.RecordOperation(name, "unavailable", 0)
		return err
	}

	start := time.Now()
	err := op(ctx)
	duration := time.Since(start)
	m.log.LogStoreOperation(name, duration, err)

	if err == nil {
		m.met.RecordOperation(name, "ok", duration)
		return nil
	}

	if isTimeoutError(err) {
		m.met.RecordOperation(name, "timeout", duration)
		m.log.Error("Operation exceeded time limit").Str("operation", name).Send()
		return &memory.TimeoutError{Op: name, Err: err}
	}

	if !isConnectionError(err) {
		m.met.RecordOperation(name, "error", duration)
		return err
	}

	m.met.RecordOperation(name, "connection_error", duration)
	m.met.OperationRetriesTotal.Inc()
	m.log.Warn("Operation failed on connection issue, retrying once").
		Str("operation", name).
		Err(err).
		Send()
	m.HandleConnectionLost()

	if err := m.EnsureConnection(ctx); err != nil {
		return err
	}

	start = time.Now()
	retryErr := op(ctx)
	duration = time.Since(start)
	m.log.LogStoreOperation(name, duration, retryErr)

	if retryErr != nil {
		m.met.RecordOperation(name, "retry_error", duration)
		return retryErr
	}
	m.met.RecordOperation(name, "retry_ok", duration)
	return nil
}
