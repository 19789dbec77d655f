// ABOUTME: Driver seam between the ConnectionManager and the mongo client
// ABOUTME: Lets tests exercise the state machine without a live cluster

package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Driver is the minimal connection surface the ConnectionManager drives.
// The production implementation wraps a mongo client; tests inject fakes.
type Driver interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// mongoDriver is the production Driver over mongo-driver v2.
type mongoDriver struct {
	cfg Config

	// onConnectionLost is invoked from the driver's pool monitor when the
	// server pool is cleared, which is how the client surfaces lost
	// connections. Set once during wiring, before Connect.
	onConnectionLost func()

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

func newMongoDriver(cfg Config) *mongoDriver {
	return &mongoDriver{cfg: cfg}
}

// Connect opens a client with the configured pool size and timeouts and
// verifies the deployment with a ping.
func (d *mongoDriver) Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(d.cfg.URI).
		SetMaxPoolSize(d.cfg.MaxPoolSize).
		SetServerSelectionTimeout(d.cfg.ServerSelectionTimeout).
		SetConnectTimeout(d.cfg.ConnectTimeout).
		SetTimeout(d.cfg.SocketTimeout).
		SetPoolMonitor(&event.PoolMonitor{
			Event: func(evt *event.PoolEvent) {
				// The pool is cleared when the server becomes unreachable.
				if evt.Type == "ConnectionPoolCleared" && d.onConnectionLost != nil {
					d.onConnectionLost()
				}
			},
		})

	client, err := mongo.Connect(opts)
	if err != nil {
		return fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("mongodb: ping: %w", err)
	}

	d.install(ctx, client)
	return nil
}

// install makes client the live handle. On reconnection the replaced
// client is released so its pool and monitor goroutines do not outlive
// the swap.
func (d *mongoDriver) install(ctx context.Context, client *mongo.Client) {
	d.mu.Lock()
	old := d.client
	d.client = client
	d.db = client.Database(d.cfg.Database)
	d.mu.Unlock()

	if old != nil {
		_ = old.Disconnect(ctx)
	}
}

// Disconnect closes the client.
func (d *mongoDriver) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	client := d.client
	d.client = nil
	d.db = nil
	d.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// database returns the handle for the configured database, or nil before
// the first successful Connect.
func (d *mongoDriver) database() *mongo.Database {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}
