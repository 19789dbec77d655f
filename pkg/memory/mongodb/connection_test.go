// ABOUTME: State machine tests for the connection manager over a fake driver
// ABOUTME: Covers bounded reconnection and the retry-once operation wrapper

package mongodb

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ainetwork-ai/ain-adk-providers/internal/logger"
	"github.com/ainetwork-ai/ain-adk-providers/internal/metrics"
	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// fakeDriver is an in-process Driver whose Connect fails a configurable
// number of times before succeeding.
type fakeDriver struct {
	mu          sync.Mutex
	failures    int // Connect calls to fail before succeeding; -1 fails forever
	connects    int
	disconnects int
}

var errRefused = errors.New("dial tcp 127.0.0.1:27017: connect: connection refused")

func (d *fakeDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connects++
	if d.failures == -1 {
		return errRefused
	}
	if d.failures > 0 {
		d.failures--
		return errRefused
	}
	return nil
}

func (d *fakeDriver) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnects++
	return nil
}

func (d *fakeDriver) connectCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

func (d *fakeDriver) setFailures(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures = n
}

func newTestManager(drv Driver, maxAttempts int) *ConnectionManager {
	cfg := Config{
		MaxReconnectAttempts: maxAttempts,
		ReconnectInterval:    time.Millisecond,
		ConnectTimeout:       100 * time.Millisecond,
		EnsureWaitTimeout:    500 * time.Millisecond,
	}
	log := logger.NewLogger(logger.Config{Level: "error", Output: io.Discard})
	met := metrics.NewMetrics(prometheus.NewRegistry())

	m := NewConnectionManager(drv, cfg, log, met)
	m.pollInterval = time.Millisecond
	return m
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Condition not met within %v", timeout)
}

// blockingDriver parks every Connect call until release is closed.
type blockingDriver struct {
	mu       sync.Mutex
	connects int
	release  chan struct{}
}

func (d *blockingDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	d.connects++
	d.mu.Unlock()
	<-d.release
	return nil
}

func (d *blockingDriver) Disconnect(ctx context.Context) error { return nil }

func (d *blockingDriver) connectCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

func TestConnectTransitionsToConnected(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 5)

	if got := m.State(); got != StateDisconnected {
		t.Fatalf("Expected initial state disconnected, got %v", got)
	}

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if got := m.State(); got != StateConnected {
		t.Errorf("Expected state connected, got %v", got)
	}

	// Connecting again must not touch the driver.
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Second Connect failed: %v", err)
	}
	if calls := drv.connectCalls(); calls != 1 {
		t.Errorf("Expected 1 driver connect, got %d", calls)
	}
}

func TestConnectFailureStaysDisconnected(t *testing.T) {
	drv := &fakeDriver{failures: -1}
	m := newTestManager(drv, 5)

	err := m.Connect(context.Background())
	if !errors.Is(err, errRefused) {
		t.Fatalf("Expected driver error to propagate, got %v", err)
	}
	if got := m.State(); got != StateDisconnected {
		t.Errorf("Expected state disconnected after failure, got %v", got)
	}
}

func TestDisconnectWhenNotConnectedIsNoOp(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 5)

	if err := m.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect on a disconnected manager must be a no-op: %v", err)
	}
	if drv.disconnects != 0 {
		t.Errorf("Driver disconnect must not be called, got %d calls", drv.disconnects)
	}
}

func TestReconnectRecoversWithinAttemptLimit(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// First two reconnection attempts fail, the third succeeds.
	drv.setFailures(2)
	m.HandleConnectionLost()

	waitFor(t, 2*time.Second, m.IsConnected)

	if got := m.ReconnectAttempts(); got != 0 {
		t.Errorf("Expected attempt counter reset after recovery, got %d", got)
	}
}

func TestReconnectStopsAfterExhaustion(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 2)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	before := drv.connectCalls()

	drv.setFailures(-1)
	m.HandleConnectionLost()

	waitFor(t, 2*time.Second, func() bool { return m.State() == StateDisconnected })

	if got := drv.connectCalls() - before; got != 2 {
		t.Errorf("Expected exactly 2 reconnection attempts, got %d", got)
	}
	if got := m.ReconnectAttempts(); got != 2 {
		t.Errorf("Expected attempt counter to hold at the limit, got %d", got)
	}

	// An explicit Connect recovers once the backend is reachable again.
	drv.setFailures(0)
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect after exhaustion failed: %v", err)
	}
	if !m.IsConnected() {
		t.Errorf("Expected connected after explicit reconnect")
	}
	if got := m.ReconnectAttempts(); got != 0 {
		t.Errorf("Expected attempt counter reset, got %d", got)
	}
}

func TestHandleConnectionLostIsSingleFlight(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)
	m.reconnectInterval = 50 * time.Millisecond

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	before := drv.connectCalls()

	drv.setFailures(1)
	m.HandleConnectionLost()
	m.HandleConnectionLost()
	m.HandleConnectionLost()

	waitFor(t, 2*time.Second, m.IsConnected)

	// One failing attempt plus one successful one, not three loops' worth.
	if got := drv.connectCalls() - before; got != 2 {
		t.Errorf("Expected 2 driver connects from a single loop, got %d", got)
	}
}

func TestConcurrentConnectSharesOneHandshake(t *testing.T) {
	drv := &blockingDriver{release: make(chan struct{})}
	m := newTestManager(drv, 3)

	errs := make(chan error, 2)
	go func() { errs <- m.Connect(context.Background()) }()
	waitFor(t, 2*time.Second, func() bool { return m.State() == StateConnecting })

	// A second caller while the handshake is parked must wait on the
	// shared outcome, not open its own.
	go func() { errs <- m.Connect(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	close(drv.release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Connect failed: %v", err)
		}
	}
	if calls := drv.connectCalls(); calls != 1 {
		t.Errorf("Expected 1 driver connect across concurrent callers, got %d", calls)
	}
	if !m.IsConnected() {
		t.Errorf("Expected connected after shared handshake")
	}
}

func TestConnectDuringReconnectLoopWaits(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	drv.setFailures(1)
	m.HandleConnectionLost()

	// The explicit Connect joins the in-flight loop; the driver must see
	// exactly one failing and one succeeding attempt besides the initial
	// connect.
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect during reconnection failed: %v", err)
	}
	if !m.IsConnected() {
		t.Errorf("Expected connected after the loop recovered")
	}
	if calls := drv.connectCalls(); calls != 3 {
		t.Errorf("Expected 3 driver connects, got %d", calls)
	}
}

func TestEnsureConnectionBoundedWait(t *testing.T) {
	drv := &fakeDriver{failures: -1}
	m := newTestManager(drv, 3)
	m.ensureWaitTimeout = 20 * time.Millisecond

	// Simulate an in-flight reconnection that never completes.
	m.mu.Lock()
	m.state = StateReconnecting
	m.reconnecting = true
	m.mu.Unlock()

	start := time.Now()
	err := m.EnsureConnection(context.Background())
	if !errors.Is(err, memory.ErrNotConnected) {
		t.Fatalf("Expected ErrNotConnected after bounded wait, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Expected the wait to span the bound, returned after %v", elapsed)
	}
	if !memory.IsConnection(err) {
		t.Errorf("Expected a connection-class error, got %v", err)
	}
}

func TestEnsureConnectionHonorsContext(t *testing.T) {
	drv := &fakeDriver{failures: -1}
	m := newTestManager(drv, 3)

	m.mu.Lock()
	m.state = StateReconnecting
	m.reconnecting = true
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.EnsureConnection(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context cancellation to surface, got %v", err)
	}
}

func TestExecuteWithRetryRetriesConnectionErrorOnce(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	calls := 0
	err := m.ExecuteWithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected the retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected exactly 2 invocations, got %d", calls)
	}
	if !m.IsConnected() {
		t.Errorf("Expected connected after recovery")
	}
}

func TestExecuteWithRetrySecondFailurePropagates(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	opErr := errors.New("connection reset by peer")
	calls := 0
	err := m.ExecuteWithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("Expected the second failure unmodified, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected exactly 2 invocations, got %d", calls)
	}
}

func TestExecuteWithRetryDoesNotRetryValidation(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	calls := 0
	err := m.ExecuteWithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return &memory.ValidationError{Field: "title", Reason: "must not be empty"}
	})
	if !memory.IsValidation(err) {
		t.Fatalf("Expected the validation error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 invocation, got %d", calls)
	}
}

func TestExecuteWithRetryDoesNotRetryTimeout(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	calls := 0
	err := m.ExecuteWithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return context.DeadlineExceeded
	})
	if !memory.IsTimeout(err) {
		t.Fatalf("Expected a timeout-class error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 invocation, got %d", calls)
	}
}

func TestExecuteWithRetryConnectsLazily(t *testing.T) {
	drv := &fakeDriver{}
	m := newTestManager(drv, 3)

	// No explicit Connect; the wrapper must establish the connection.
	calls := 0
	err := m.ExecuteWithRetry(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Expected lazy connect to succeed, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 invocation, got %d", calls)
	}
	if !m.IsConnected() {
		t.Errorf("Expected connected after lazy connect")
	}
}

func TestStateStrings(t *testing.T) {
	cases := map[ConnectionState]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateConnected:    "connected",
		StateReconnecting: "reconnecting",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State %d: expected %q, got %q", state, want, got)
		}
	}
}
