// ABOUTME: Persistent intent catalog
// ABOUTME: Read-heavy, looked up by id or name

package mongodb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// IntentStore is the persistent intent backend.
type IntentStore struct {
	m *Memory
}

var _ memory.IntentStore = (*IntentStore)(nil)

func (s *IntentStore) findOne(ctx context.Context, name string, filter bson.D) (*memory.Intent, bool, error) {
	var intent *memory.Intent

	err := s.m.conn.ExecuteWithRetry(ctx, name, func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		var doc intentDoc
		err := s.m.collection(colIntents).FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}

		found := doc.toIntent()
		intent = &found
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return intent, intent != nil, nil
}

// GetIntent returns the intent by id, or ok=false when unknown.
func (s *IntentStore) GetIntent(ctx context.Context, id string) (*memory.Intent, bool, error) {
	return s.findOne(ctx, "getIntent", bson.D{{Key: "id", Value: id}})
}

// GetIntentByName returns the intent by exact name, or ok=false.
func (s *IntentStore) GetIntentByName(ctx context.Context, name string) (*memory.Intent, bool, error) {
	return s.findOne(ctx, "getIntentByName", bson.D{{Key: "name", Value: name}})
}

// SaveIntent stores a new intent, assigning an id when missing.
func (s *IntentStore) SaveIntent(ctx context.Context, intent *memory.Intent) error {
	if err := validateIntent(intent); err != nil {
		return err
	}
	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}

	return s.m.conn.ExecuteWithRetry(ctx, "saveIntent", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		_, err := s.m.collection(colIntents).InsertOne(ctx, intentDoc{
			ID:          intent.ID,
			Name:        intent.Name,
			Description: intent.Description,
			Prompt:      intent.Prompt,
			Model:       intent.Model,
		})
		if mongo.IsDuplicateKeyError(err) {
			return &memory.ValidationError{Field: "id", Reason: "already exists"}
		}
		return err
	})
}

// UpdateIntent replaces the intent stored under id. Returns ErrNotFound
// for an unknown id.
func (s *IntentStore) UpdateIntent(ctx context.Context, id string, intent *memory.Intent) error {
	if err := validateIntent(intent); err != nil {
		return err
	}

	return s.m.conn.ExecuteWithRetry(ctx, "updateIntent", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		res, err := s.m.collection(colIntents).UpdateOne(ctx,
			bson.D{{Key: "id", Value: id}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "name", Value: intent.Name},
				{Key: "description", Value: intent.Description},
				{Key: "prompt", Value: intent.Prompt},
				{Key: "model", Value: intent.Model},
			}}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return memory.ErrNotFound
		}
		return nil
	})
}

// DeleteIntent removes the intent; unknown ids are a no-op.
func (s *IntentStore) DeleteIntent(ctx context.Context, id string) error {
	return s.m.conn.ExecuteWithRetry(ctx, "deleteIntent", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		_, err := s.m.collection(colIntents).DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
		return err
	})
}

// ListIntents returns the full catalog.
func (s *IntentStore) ListIntents(ctx context.Context) ([]memory.Intent, error) {
	list := make([]memory.Intent, 0)

	err := s.m.conn.ExecuteWithRetry(ctx, "listIntents", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		cursor, err := s.m.collection(colIntents).Find(ctx, bson.D{})
		if err != nil {
			return err
		}

		var docs []intentDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}

		for i := range docs {
			list = append(list, docs[i].toIntent())
		}
		return nil
	})
	if err != nil {
		return nil, err
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
