// ABOUTME: Configuration for the persistent MongoDB memory backend
// ABOUTME: Connection, reconnection and per-operation timeout settings

package mongodb

import "time"

// Default configuration values.
const (
	DefaultDatabase               = "ain_adk"
	DefaultMaxReconnectAttempts   = 5
	DefaultReconnectInterval      = 5 * time.Second
	DefaultMaxPoolSize            = uint64(1)
	DefaultServerSelectionTimeout = 30 * time.Second
	DefaultSocketTimeout          = 45 * time.Second
	DefaultConnectTimeout         = 30 * time.Second
	DefaultOperationTimeout       = 10 * time.Second
	DefaultEnsureWaitTimeout      = 30 * time.Second
)

// Config holds the persistent backend configuration. Zero values are
// replaced with the defaults above; only URI is required.
type Config struct {
	URI      string
	Database string

	MaxReconnectAttempts int
	ReconnectInterval    time.Duration

	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	ConnectTimeout         time.Duration

	// OperationTimeout bounds every store operation at the query level.
	OperationTimeout time.Duration

	// EnsureWaitTimeout bounds how long a caller waits on an in-flight
	// reconnection before failing with a connection-unavailable error.
	EnsureWaitTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.ReconnectInterval == 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = DefaultMaxPoolSize
	}
	if c.ServerSelectionTimeout == 0 {
		c.ServerSelectionTimeout = DefaultServerSelectionTimeout
	}
	if c.SocketTimeout == 0 {
		c.SocketTimeout = DefaultSocketTimeout
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	if c.EnsureWaitTimeout == 0 {
		c.EnsureWaitTimeout = DefaultEnsureWaitTimeout
	}
	return c
}
