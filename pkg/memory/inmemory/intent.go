// ABOUTME: Transient intent catalog
// ABOUTME: Exact-match lookup by id or name over a single map

package inmemory

import (
	"context"

	"github.com/google/uuid"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// IntentStore is the transient intent backend.
type IntentStore struct {
	intents map[string]memory.Intent
}

var _ memory.IntentStore = (*IntentStore)(nil)

// NewIntentStore creates an empty intent store.
func NewIntentStore() *IntentStore {
	return &IntentStore{intents: make(map[string]memory.Intent)}
}

// GetIntent returns the intent by id, or ok=false when unknown.
func (s *IntentStore) GetIntent(_ context.Context, id string) (*memory.Intent, bool, error) {
	intent, ok := s.intents[id]
	if !ok {
		return nil, false, nil
	}
	return &intent, true, nil
}

// GetIntentByName returns the intent by exact name, or ok=false.
func (s *IntentStore) GetIntentByName(_ context.Context, name string) (*memory.Intent, bool, error) {
	for _, intent := range s.intents {
		if intent.Name == name {
			found := intent
			return &found, true, nil
		}
	}
	return nil, false, nil
}

// SaveIntent stores a new intent, assigning an id when missing.
func (s *IntentStore) SaveIntent(_ context.Context, intent *memory.Intent) error {
	if err := validateIntent(intent); err != nil {
		return err
	}

	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}
	s.intents[intent.ID] = *intent

	return nil
}

// UpdateIntent replaces the intent stored under id. Returns ErrNotFound
// for an unknown id.
func (s *IntentStore) UpdateIntent(_ context.Context, id string, intent *memory.Intent) error {
	if err := validateIntent(intent); err != nil {
		return err
	}

	if _, ok := s.intents[id]; !ok {
		return memory.ErrNotFound
	}

	updated := *intent
	updated.ID = id
	s.intents[id] = updated

	return nil
}

// DeleteIntent removes the intent; unknown ids are a no-op.
func (s *IntentStore) DeleteIntent(_ context.Context, id string) error {
	delete(s.intents, id)
	return nil
}

// ListIntents returns the full catalog.
func (s *IntentStore) ListIntents(_ context.Context) ([]memory.Intent, error) {
	list := make([]memory.Intent, 0, len(s.intents))
	for _, intent := range s.intents {
		list = append(list, intent)
	}
	return list, nil
}

func validateIntent(intent *memory.Intent) error {
	if intent.Name == "" {
		return &memory.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if intent.Description == "" {
		return &memory.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	return nil
}
