// ABOUTME: Classification of driver errors into the shared taxonomy
// ABOUTME: Connection-class failures are the only ones eligible for retry

package mongodb

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// isTimeoutError reports whether err is an exceeded operation bound.
// Timeouts are surfaced immediately and never retried.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if memory.IsTimeout(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return mongo.IsTimeout(err)
}

// isConnectionError reports whether err is a transient infrastructure
// failure eligible for exactly one retry. Message matching covers driver
// errors that carry no structured class.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if isTimeoutError(err) {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return false
	}
	if memory.IsConnection(err) {
		return true
	}
	if mongo.IsNetworkError(err) {
		return true
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "connection") ||
		strings.Contains(msg, "disconnect") ||
		strings.Contains(msg, "server selection")
}
