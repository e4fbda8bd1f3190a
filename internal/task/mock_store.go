package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// storedTask is what MockTaskStore remembers about a saved task.
type storedTask struct {
	task      Task
	status    TaskStatus
	errorMsg  string
	changedAt time.Time
}

// MockTaskStore is an in-memory TaskStore. It hands back the task values it
// was given, so tests can observe execution of recovered tasks. Status is
// tracked by the store, not by the task values.
type MockTaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*storedTask

	// SaveFn and UpdateStatusFn replace the default behavior when set.
	SaveFn         func(ctx context.Context, task Task) error
	UpdateStatusFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]*storedTask)}
}

// SaveTask records the task with its current status.
func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID()] = &storedTask{
		task:      task,
		status:    task.Status(),
		changedAt: time.Now(),
	}
	return nil
}

// UpdateTaskStatus changes the recorded status. Unknown IDs are ignored.
func (s *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tasks[taskID]
	if !ok {
		return nil
	}
	rec.status = status
	rec.errorMsg = errorMsg
	rec.changedAt = time.Now()
	return nil
}

// GetPendingTasks returns every task recorded as pending.
func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.matching(func(rec *storedTask) bool {
		return rec.status == TaskStatusPending
	}), nil
}

// GetProcessingTasks returns tasks in processing for longer than olderThan.
// A zero olderThan returns all of them.
func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.matching(func(rec *storedTask) bool {
		return rec.status == TaskStatusProcessing &&
			(olderThan == 0 || rec.changedAt.Before(cutoff))
	}), nil
}

// WithTx returns the same store; the mock has no transactions.
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

// StatusOf returns the recorded status of a task, or "" if unknown.
func (s *MockTaskStore) StatusOf(taskID uuid.UUID) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.tasks[taskID]; ok {
		return rec.status
	}
	return ""
}

// ErrorOf returns the last error message recorded for a task.
func (s *MockTaskStore) ErrorOf(taskID uuid.UUID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.tasks[taskID]; ok {
		return rec.errorMsg
	}
	return ""
}

// SetStatusTime backdates the last status change of a task.
func (s *MockTaskStore) SetStatusTime(taskID uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.tasks[taskID]; ok {
		rec.changedAt = at
	}
}

func (s *MockTaskStore) matching(keep func(*storedTask) bool) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Task
	for _, rec := range s.tasks {
		if keep(rec) {
			out = append(out, rec.task)
		}
	}
	return out
}
