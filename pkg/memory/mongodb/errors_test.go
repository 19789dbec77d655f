// ABOUTME: Tests for driver error classification
// ABOUTME: Only connection-class failures may trigger a retry

package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

func TestTimeoutClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped timeout", &memory.TimeoutError{Op: "find", Err: context.DeadlineExceeded}, true},
		{"plain failure", errors.New("boom"), false},
		{"connection refused", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTimeoutError(tc.err); got != tc.want {
				t.Errorf("isTimeoutError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestConnectionClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused by message", errors.New("dial tcp: connection refused"), true},
		{"disconnect by message", errors.New("socket was unexpectedly disconnected"), true},
		{"server selection", errors.New("server selection timeout"), true},
		{"wrapped connection", &memory.ConnectionError{Op: "ping", Err: errors.New("down")}, true},
		{"application failure", errors.New("boom"), false},
		{"validation", &memory.ValidationError{Field: "title", Reason: "empty"}, false},
		{"not found", memory.ErrNotFound, false},
		{"unauthorized", memory.ErrUnauthorized, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isConnectionError(tc.err); got != tc.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestTimeoutsAreNotConnectionErrors(t *testing.T) {
	// A timed-out connection attempt must surface as a timeout, never as
	// a retryable connection failure.
	err := errors.New("connection handshake: " + context.DeadlineExceeded.Error())
	if isConnectionError(err) && isTimeoutError(err) {
		t.Fatalf("Error classified as both timeout and connection: %v", err)
	}

	wrapped := &memory.TimeoutError{Op: "connect", Err: errors.New("connection handshake timed out")}
	if isConnectionError(wrapped) {
		t.Errorf("Timeout wrapper must not classify as connection error")
	}
	if !isTimeoutError(wrapped) {
		t.Errorf("Timeout wrapper must classify as timeout")
	}
}
