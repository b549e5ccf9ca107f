// Package background tracks asynchronously triggered sync runs so API
// clients can poll for their outcome instead of holding a connection open
// for the whole cross-product fetch.
package background

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobpulse-engine/pkg/models"
)

// TaskStatus represents the lifecycle state of a background task.
type TaskStatus string

const (
	TaskStatusAccepted   TaskStatus = "ACCEPTED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusSuccess    TaskStatus = "SUCCESS"
	TaskStatusFailure    TaskStatus = "FAILURE"
)

// ErrTaskNotFound is returned when a process ID is unknown or expired.
var ErrTaskNotFound = errors.New("background: task not found")

// TaskResult is the pollable record of one triggered sync run.
type TaskResult struct {
	ProcessID   string          `json:"process_id"`
	Status      TaskStatus      `json:"status"`
	Run         *models.SyncRun `json:"run,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// TaskStore stores and retrieves task results.
type TaskStore interface {
	Store(ctx context.Context, result *TaskResult) error
	Get(ctx context.Context, processID string) (*TaskResult, error)
	Update(ctx context.Context, result *TaskResult) error
	Cleanup(ctx context.Context, maxAge time.Duration) error
	List(ctx context.Context) ([]*TaskResult, error)
}

// InMemoryTaskStore implements TaskStore with a process-local map.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*TaskResult
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[string]*TaskResult)}
}

func (s *InMemoryTaskStore) Store(_ context.Context, result *TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[result.ProcessID] = result
	return nil
}

func (s *InMemoryTaskStore) Get(_ context.Context, processID string) (*TaskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.tasks[processID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *result
	return &copied, nil
}

func (s *InMemoryTaskStore) Update(_ context.Context, result *TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[result.ProcessID]; !ok {
		return ErrTaskNotFound
	}
	s.tasks[result.ProcessID] = result
	return nil
}

func (s *InMemoryTaskStore) Cleanup(_ context.Context, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for id, result := range s.tasks {
		if result.CompletedAt != nil && result.CompletedAt.Before(cutoff) {
			delete(s.tasks, id)
		}
	}
	return nil
}

func (s *InMemoryTaskStore) List(_ context.Context) ([]*TaskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*TaskResult, 0, len(s.tasks))
	for _, result := range s.tasks {
		copied := *result
		out = append(out, &copied)
	}
	return out, nil
}
