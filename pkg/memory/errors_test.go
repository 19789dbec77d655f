// ABOUTME: Tests for the shared error taxonomy
// ABOUTME: Verifies classification and unwrapping behavior

package memory

import (
	"errors"
	"fmt"
	"testing"
)

func TestConnectionErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := &ConnectionError{Op: "listIntents", Err: cause}

	if !errors.Is(err, cause) {
		t.Errorf("Expected ConnectionError to unwrap to its cause")
	}

	if !IsConnection(err) {
		t.Errorf("Expected IsConnection to be true")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsConnection(wrapped) {
		t.Errorf("Expected IsConnection to see through wrapping")
	}
}

func TestTimeoutErrorClassification(t *testing.T) {
	err := &TimeoutError{Op: "getConversation", Err: errors.New("deadline")}

	if !IsTimeout(err) {
		t.Errorf("Expected IsTimeout to be true")
	}

	if IsConnection(err) {
		t.Errorf("Timeout must not classify as connection error")
	}
}

func TestValidationErrorClassification(t *testing.T) {
	err := &ValidationError{Field: "name", Reason: "must not be empty"}

	if !IsValidation(err) {
		t.Errorf("Expected IsValidation to be true")
	}

	if IsConnection(err) || IsTimeout(err) {
		t.Errorf("Validation must not classify as retryable")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(ErrNotFound, ErrUnauthorized) {
		t.Errorf("ErrNotFound and ErrUnauthorized must be distinct")
	}

	if errors.Is(ErrNotConnected, ErrNotFound) {
		t.Errorf("ErrNotConnected and ErrNotFound must be distinct")
	}
}
