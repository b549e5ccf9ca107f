package background

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTaskStoreLifecycle(t *testing.T) {
	s := NewInMemoryTaskStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	task := &TaskResult{ProcessID: "p1", Status: TaskStatusAccepted, CreatedAt: time.Now()}
	if err := s.Store(ctx, task); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := s.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != TaskStatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", got.Status)
	}

	// Get hands out copies, not the stored record
	got.Status = TaskStatusFailure
	again, _ := s.Get(ctx, "p1")
	if again.Status != TaskStatusAccepted {
		t.Error("mutating a returned result leaked into the store")
	}

	task.Status = TaskStatusSuccess
	if err := s.Update(ctx, task); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := s.Get(ctx, "p1")
	if updated.Status != TaskStatusSuccess {
		t.Errorf("status after update = %s, want SUCCESS", updated.Status)
	}

	if err := s.Update(ctx, &TaskResult{ProcessID: "unknown"}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("update of unknown task: got %v", err)
	}
}

func TestTaskStoreCleanup(t *testing.T) {
	s := NewInMemoryTaskStore()
	ctx := context.Background()

	old := time.Now().Add(-2 * time.Hour)
	s.Store(ctx, &TaskResult{ProcessID: "done-old", Status: TaskStatusSuccess, CompletedAt: &old})

	fresh := time.Now()
	s.Store(ctx, &TaskResult{ProcessID: "done-new", Status: TaskStatusSuccess, CompletedAt: &fresh})
	s.Store(ctx, &TaskResult{ProcessID: "running", Status: TaskStatusProcessing})

	if err := s.Cleanup(ctx, time.Hour); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := s.Get(ctx, "done-old"); !errors.Is(err, ErrTaskNotFound) {
		t.Error("expired task survived cleanup")
	}
	if _, err := s.Get(ctx, "done-new"); err != nil {
		t.Error("recent task removed by cleanup")
	}
	if _, err := s.Get(ctx, "running"); err != nil {
		t.Error("incomplete task removed by cleanup")
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("list len = %d, want 2", len(list))
	}
}
