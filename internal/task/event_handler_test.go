package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTaskCreator struct {
	CreateTaskFn  func(packageID uuid.UUID) (Task, error)
	LastPackageID uuid.UUID
	Calls         int
}

func (m *mockTaskCreator) CreateTask(packageID uuid.UUID) (Task, error) {
	m.Calls++
	m.LastPackageID = packageID
	return m.CreateTaskFn(packageID)
}

type mockTaskSubmitter struct {
	SubmitFn  func(ctx context.Context, task Task) error
	Submitted []Task
}

func (m *mockTaskSubmitter) Submit(ctx context.Context, task Task) error {
	m.Submitted = append(m.Submitted, task)
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, task)
	}
	return nil
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newEvent := func(t *testing.T, eventType string, payload interface{}) *events.TaskRequestEvent {
		t.Helper()
		event, err := events.NewTaskRequestEvent(eventType, payload)
		require.NoError(t, err)
		return event
	}

	t.Run("creates and submits url check task", func(t *testing.T) {
		packageID := uuid.New()
		task := CreateMockTaskWithPayload("check")
		factory := &mockTaskCreator{CreateTaskFn: func(uuid.UUID) (Task, error) { return task, nil }}
		runner := &mockTaskSubmitter{}
		handler := NewTaskFactoryEventHandler(factory, runner, logger)

		event := newEvent(t, TaskTypeCheckPackageURLs, map[string]string{"package_id": packageID.String()})
		err := handler.HandleEvent(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, packageID, factory.LastPackageID)
		require.Len(t, runner.Submitted, 1)
		assert.Equal(t, task.ID(), runner.Submitted[0].ID())
	})

	t.Run("ignores unsupported event type", func(t *testing.T) {
		factory := &mockTaskCreator{}
		runner := &mockTaskSubmitter{}
		handler := NewTaskFactoryEventHandler(factory, runner, logger)

		err := handler.HandleEvent(context.Background(), newEvent(t, "unsupported_type", map[string]string{"key": "value"}))

		require.NoError(t, err)
		assert.Zero(t, factory.Calls)
		assert.Empty(t, runner.Submitted)
	})

	t.Run("rejects invalid package ID", func(t *testing.T) {
		factory := &mockTaskCreator{}
		handler := NewTaskFactoryEventHandler(factory, &mockTaskSubmitter{}, logger)

		event := newEvent(t, TaskTypeCheckPackageURLs, map[string]string{"package_id": "not-a-uuid"})
		err := handler.HandleEvent(context.Background(), event)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid package ID")
		assert.Zero(t, factory.Calls)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		handler := NewTaskFactoryEventHandler(&mockTaskCreator{}, &mockTaskSubmitter{}, logger)

		event := newEvent(t, TaskTypeCheckPackageURLs, []int{1, 2})
		err := handler.HandleEvent(context.Background(), event)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal payload")
	})

	t.Run("propagates task creation failure", func(t *testing.T) {
		createErr := errors.New("factory broken")
		factory := &mockTaskCreator{CreateTaskFn: func(uuid.UUID) (Task, error) { return nil, createErr }}
		runner := &mockTaskSubmitter{}
		handler := NewTaskFactoryEventHandler(factory, runner, logger)

		event := newEvent(t, TaskTypeCheckPackageURLs, map[string]string{"package_id": uuid.NewString()})
		err := handler.HandleEvent(context.Background(), event)

		require.Error(t, err)
		assert.ErrorIs(t, err, createErr)
		assert.Empty(t, runner.Submitted)
	})

	t.Run("propagates submission failure", func(t *testing.T) {
		submitErr := errors.New("queue full")
		factory := &mockTaskCreator{CreateTaskFn: func(uuid.UUID) (Task, error) {
			return CreateMockTaskWithPayload("check"), nil
		}}
		runner := &mockTaskSubmitter{SubmitFn: func(context.Context, Task) error { return submitErr }}
		handler := NewTaskFactoryEventHandler(factory, runner, logger)

		event := newEvent(t, TaskTypeCheckPackageURLs, map[string]string{"package_id": uuid.NewString()})
		err := handler.HandleEvent(context.Background(), event)

		require.Error(t, err)
		assert.ErrorIs(t, err, submitErr)
	})
}

func TestTaskFactoryEventHandler_WithEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	packageID := uuid.New()

	factory := &mockTaskCreator{CreateTaskFn: func(id uuid.UUID) (Task, error) {
		return CreateMockTaskWithPayload(id.String()), nil
	}}
	runner := &mockTaskSubmitter{}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(NewTaskFactoryEventHandler(factory, runner, logger))

	event, err := events.NewTaskRequestEvent(TaskTypeCheckPackageURLs, CheckPackageURLsPayload{PackageID: packageID})
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	assert.Equal(t, packageID, factory.LastPackageID)
	assert.Len(t, runner.Submitted, 1)
}
