package task

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// MockTask is a Task whose behavior is supplied by the test.
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus

	// ExecuteFn runs on Execute; nil means the task succeeds.
	ExecuteFn func(ctx context.Context) error
}

// NewMockTask creates a pending MockTask.
func NewMockTask(id uuid.UUID, taskType string, payload []byte) *MockTask {
	return &MockTask{
		TaskID:      id,
		TaskType:    taskType,
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
	}
}

// CreateMockTaskWithPayload creates a pending "mock_task" whose payload
// carries the given label.
func CreateMockTaskWithPayload(label string) *MockTask {
	data, _ := json.Marshal(map[string]string{"label": label})
	return NewMockTask(uuid.New(), "mock_task", data)
}

func (t *MockTask) ID() uuid.UUID      { return t.TaskID }
func (t *MockTask) Type() string       { return t.TaskType }
func (t *MockTask) Payload() []byte    { return t.TaskPayload }
func (t *MockTask) Status() TaskStatus { return t.TaskStatus }

// Execute calls ExecuteFn if set.
func (t *MockTask) Execute(ctx context.Context) error {
	if t.ExecuteFn == nil {
		return nil
	}
	return t.ExecuteFn(ctx)
}
