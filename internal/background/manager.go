package background

import (
	"context"
	"time"

	"jobpulse-engine/internal/logging"
	"jobpulse-engine/internal/scheduler"
	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"
)

const taskRetention = time.Hour

// Manager launches sync runs in the background and keeps their results
// available for polling until they age out.
type Manager struct {
	sched  *scheduler.Scheduler
	store  TaskStore
	logger logging.Logger
	stop   chan struct{}
}

func NewManager(sched *scheduler.Scheduler) *Manager {
	return &Manager{
		sched:  sched,
		store:  NewInMemoryTaskStore(),
		logger: logging.GetGlobalLogger(),
		stop:   make(chan struct{}),
	}
}

// Start launches the retention sweep loop.
func (m *Manager) Start() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				if err := m.store.Cleanup(context.Background(), taskRetention); err != nil {
					m.logger.Warn("Task cleanup failed", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}
		}
	}()
}

func (m *Manager) Stop() {
	close(m.stop)
}

// Trigger accepts a sync request and runs it asynchronously, returning the
// process ID to poll.
func (m *Manager) Trigger(req *models.SyncRequest) (string, error) {
	processID := utils.GenerateRequestID()
	result := &TaskResult{
		ProcessID: processID,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
	}
	if err := m.store.Store(context.Background(), result); err != nil {
		return "", err
	}

	go m.execute(processID, result.CreatedAt, req)
	return processID, nil
}

// execute carries the acceptance time through every status transition so
// polling clients see a stable creation timestamp.
func (m *Manager) execute(processID string, created time.Time, req *models.SyncRequest) {
	ctx := context.Background()

	running := &TaskResult{ProcessID: processID, Status: TaskStatusProcessing, CreatedAt: created}
	if err := m.store.Update(ctx, running); err != nil {
		m.logger.Error("Failed to mark task processing", map[string]interface{}{
			"process_id": processID,
			"error":      err.Error(),
		})
		return
	}

	run := m.sched.RunSync(ctx, req)

	done := time.Now()
	final := &TaskResult{
		ProcessID:   processID,
		Run:         run,
		CreatedAt:   created,
		CompletedAt: &done,
	}
	if run.Success {
		final.Status = TaskStatusSuccess
	} else {
		final.Status = TaskStatusFailure
		if len(run.Errors) > 0 {
			final.Error = run.Errors[0]
		}
	}

	if err := m.store.Update(ctx, final); err != nil {
		m.logger.Error("Failed to record task result", map[string]interface{}{
			"process_id": processID,
			"error":      err.Error(),
		})
	}
}

// Status returns the pollable state of one task.
func (m *Manager) Status(ctx context.Context, processID string) (*TaskResult, error) {
	return m.store.Get(ctx, processID)
}

// Recent lists all retained task results.
func (m *Manager) Recent(ctx context.Context) ([]*TaskResult, error) {
	return m.store.List(ctx)
}
