// ABOUTME: Transient workflow store with ownership checks
// ABOUTME: Per-user index set mirrors the persistent backend's index

package inmemory

import (
	"context"

	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
)

// WorkflowStore is the transient workflow backend.
type WorkflowStore struct {
	workflows map[string]memory.Workflow
	userIndex map[string]map[string]struct{}
}

var _ memory.WorkflowStore = (*WorkflowStore)(nil)

// NewWorkflowStore creates an empty workflow store.
func NewWorkflowStore() *WorkflowStore {
	return &WorkflowStore{
		workflows: make(map[string]memory.Workflow),
		userIndex: make(map[string]map[string]struct{}),
	}
}

// CreateWorkflow stores the workflow and indexes it under its owner.
func (s *WorkflowStore) CreateWorkflow(_ context.Context, workflow *memory.Workflow) (*memory.Workflow, error) {
	if err := validateWorkflow(workflow); err != nil {
		return nil, err
	}
	if _, exists := s.workflows[workflow.WorkflowID]; exists {
		return nil, &memory.ValidationError{Field: "workflowId", Reason: "already exists"}
	}

	s.workflows[workflow.WorkflowID] = *workflow

	if workflow.UserID != "" {
		if s.userIndex[workflow.UserID] == nil {
			s.userIndex[workflow.UserID] = make(map[string]struct{})
		}
		s.userIndex[workflow.UserID][workflow.WorkflowID] = struct{}{}
	}

	created := *workflow
	return &created, nil
}

// GetWorkflow returns the workflow, or ok=false when unknown.
func (s *WorkflowStore) GetWorkflow(_ context.Context, workflowID string) (*memory.Workflow, bool, error) {
	wf, ok := s.workflows[workflowID]
	if !ok {
		return nil, false, nil
	}
	return &wf, true, nil
}

// UpdateWorkflow applies a partial update after checking ownership.
// Templates cannot be updated through this path.
func (s *WorkflowStore) UpdateWorkflow(_ context.Context, workflowID string, updates memory.WorkflowUpdate) error {
	wf, ok := s.workflows[workflowID]
	if !ok {
		return memory.ErrNotFound
	}
	if wf.IsTemplate() || wf.UserID != updates.UserID {
		return memory.ErrUnauthorized
	}

	if updates.Title != nil {
		wf.Title = *updates.Title
	}
	if updates.Description != nil {
		wf.Description = *updates.Description
	}
	if updates.Active != nil {
		wf.Active = *updates.Active
	}
	if updates.Content != nil {
		wf.Content = *updates.Content
	}
	s.workflows[workflowID] = wf

	return nil
}

// DeleteWorkflow removes the workflow only when userID matches the stored
// owner; any mismatch or absence is a silent no-op.
func (s *WorkflowStore) DeleteWorkflow(_ context.Context, workflowID, userID string) error {
	wf, ok := s.workflows[workflowID]
	if !ok || wf.IsTemplate() || wf.UserID != userID {
		return nil
	}

	delete(s.workflows, workflowID)
	if idx, ok := s.userIndex[wf.UserID]; ok {
		delete(idx, workflowID)
	}

	return nil
}

// ListWorkflows returns every template, plus the given user's own
// workflows when userID is non-empty.
func (s *WorkflowStore) ListWorkflows(_ context.Context, userID string) ([]memory.Workflow, error) {
	var list []memory.Workflow

	for _, wf := range s.workflows {
		if wf.IsTemplate() {
			list = append(list, wf)
		}
	}

	if userID != "" {
		for workflowID := range s.userIndex[userID] {
			if wf, ok := s.workflows[workflowID]; ok {
				list = append(list, wf)
			}
		}
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
