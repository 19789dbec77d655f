// ABOUTME: Persistent workflow store with ownership-checked mutations
// ABOUTME: Templates are ownerless documents, always listed, never user-mutable

package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// WorkflowStore is the persistent workflow backend.
type WorkflowStore struct {
	m *Memory
}

var _ memory.WorkflowStore = (*WorkflowStore)(nil)

// templateFilter matches ownerless workflow documents.
func templateFilter() bson.D {
	return bson.D{{Key: "userId", Value: bson.D{{Key: "$exists", Value: false}}}}
}

// CreateWorkflow stores the workflow. The userId field doubles as the
// per-user index via the collection's userId secondary index.
func (s *WorkflowStore) CreateWorkflow(ctx context.Context, workflow *memory.Workflow) (*memory.Workflow, error) {
	if err := validateWorkflow(workflow); err != nil {
		return nil, err
	}

	err := s.m.conn.ExecuteWithRetry(ctx, "createWorkflow", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		_, err := s.m.collection(colWorkflows).InsertOne(ctx, workflowDoc{
			WorkflowID:  workflow.WorkflowID,
			UserID:      workflow.UserID,
			Title:       workflow.Title,
			Description: workflow.Description,
			Active:      workflow.Active,
			Content:     workflow.Content,
		})
		if mongo.IsDuplicateKeyError(err) {
			return &memory.ValidationError{Field: "workflowId", Reason: "already exists"}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	created := *workflow
	return &created, nil
}

// GetWorkflow returns the workflow, or ok=false when unknown.
func (s *WorkflowStore) GetWorkflow(ctx context.Context, workflowID string) (*memory.Workflow, bool, error) {
	var workflow *memory.Workflow

	err := s.m.conn.ExecuteWithRetry(ctx, "getWorkflow", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		var doc workflowDoc
		err := s.m.collection(colWorkflows).
			FindOne(ctx, bson.D{{Key: "workflowId", Value: workflowID}}).
			Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}

		found := doc.toWorkflow()
		workflow = &found
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return workflow, workflow != nil, nil
}

// UpdateWorkflow applies a partial update. The ownership check rides in
// the update filter so owner, workflow and mutation stay one atomic
// document operation; a miss is classified afterwards.
func (s *WorkflowStore) UpdateWorkflow(ctx context.Context, workflowID string, updates memory.WorkflowUpdate) error {
	set := bson.D{}
	if updates.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *updates.Title})
	}
	if updates.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *updates.Description})
	}
	if updates.Active != nil {
		set = append(set, bson.E{Key: "active", Value: *updates.Active})
	}
	if updates.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *updates.Content})
	}

	return s.m.conn.ExecuteWithRetry(ctx, "updateWorkflow", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		// Templates store no userId at all, so this filter can never match
		// one; they stay immutable through this path.
		filter := bson.D{
			{Key: "workflowId", Value: workflowID},
			{Key: "userId", Value: updates.UserID},
		}

		if len(set) == 0 {
			// Nothing to change; still report ownership faithfully.
			res := s.m.collection(colWorkflows).FindOne(ctx, filter)
			if errors.Is(res.Err(), mongo.ErrNoDocuments) {
				return s.classifyMiss(ctx, workflowID)
			}
			return res.Err()
		}

		res, err := s.m.collection(colWorkflows).UpdateOne(ctx,
			filter,
			bson.D{{Key: "$set", Value: set}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return s.classifyMiss(ctx, workflowID)
		}
		return nil
	})
}

// classifyMiss distinguishes a missing workflow from a foreign-owned one
// after a filtered mutation matched nothing.
func (s *WorkflowStore) classifyMiss(ctx context.Context, workflowID string) error {
	err := s.m.collection(colWorkflows).
		FindOne(ctx, bson.D{{Key: "workflowId", Value: workflowID}}).
		Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return memory.ErrNotFound
	}
	if err != nil {
		return err
	}
	return memory.ErrUnauthorized
}

// DeleteWorkflow removes the workflow only when userID matches the
// stored owner; any mismatch or absence is a silent no-op, leaking
// nothing about existence.
func (s *WorkflowStore) DeleteWorkflow(ctx context.Context, workflowID, userID string) error {
	if userID == "" {
		return nil
	}

	return s.m.conn.ExecuteWithRetry(ctx, "deleteWorkflow", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		_, err := s.m.collection(colWorkflows).DeleteOne(ctx, bson.D{
			{Key: "workflowId", Value: workflowID},
			{Key: "userId", Value: userID},
		})
		return err
	})
}

// ListWorkflows returns every template, plus the given user's own
// workflows when userID is non-empty.
func (s *WorkflowStore) ListWorkflows(ctx context.Context, userID string) ([]memory.Workflow, error) {
	list := make([]memory.Workflow, 0)

	err := s.m.conn.ExecuteWithRetry(ctx, "listWorkflows", func(ctx context.Context) error {
		ctx, cancel := s.m.operationCtx(ctx)
		defer cancel()

		filter := any(templateFilter())
		if userID != "" {
			filter = bson.D{{Key: "$or", Value: bson.A{
				templateFilter(),
				bson.D{{Key: "userId", Value: userID}},
			}}}
		}

		cursor, err := s.m.collection(colWorkflows).Find(ctx, filter)
		if err != nil {
			return err
		}

		var docs []workflowDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}

		for i := range docs {
			list = append(list, docs[i].toWorkflow())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func validateWorkflow(workflow *memory.Workflow) error {
	if workflow.WorkflowID == "" {
		return &memory.ValidationError{Field: "workflowId", Reason: "must not be empty"}
	}
	if workflow.Title == "" {
		return &memory.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if workflow.Content == "" {
		return &memory.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return nil
}
