// ABOUTME: Tests for the mongo client handle swap
// ABOUTME: A replaced client must be released, never leaked

package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// newLazyClient builds a client without touching the network; the driver
// dials on first use.
func newLazyClient(t *testing.T) *mongo.Client {
	t.Helper()
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("Failed to build client: %v", err)
	}
	return client
}

func TestInstallReleasesReplacedClient(t *testing.T) {
	d := newMongoDriver(Config{URI: "mongodb://localhost:27017"}.withDefaults())
	ctx := context.Background()

	first := newLazyClient(t)
	d.install(ctx, first)

	second := newLazyClient(t)
	d.install(ctx, second)
	t.Cleanup(func() { _ = d.Disconnect(context.Background()) })

	if d.database() == nil {
		t.Fatalf("Expected a database handle after install")
	}

	// The replaced client must be fully shut down.
	pingCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if err := first.Ping(pingCtx, nil); !errors.Is(err, mongo.ErrClientDisconnected) {
		t.Errorf("Expected the replaced client to be disconnected, got %v", err)
	}

	// The live client must not be; without a server its ping fails on
	// server selection, never with a disconnected-client error.
	pingCtx2, cancel2 := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel2()
	if err := second.Ping(pingCtx2, nil); errors.Is(err, mongo.ErrClientDisconnected) {
		t.Errorf("Live client must not be disconnected by the swap")
	}
}

func TestDisconnectWithoutConnectIsNoOp(t *testing.T) {
	d := newMongoDriver(Config{URI: "mongodb://localhost:27017"}.withDefaults())

	if err := d.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect before Connect must be a no-op: %v", err)
	}
	if d.database() != nil {
		t.Errorf("Expected no database handle before Connect")
	}
}
