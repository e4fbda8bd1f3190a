package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/events"
)

// TaskCreator builds a task for a package
type TaskCreator interface {
	CreateTask(packageID uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background execution
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to turn URL check requests into submitted tasks.
type TaskFactoryEventHandler struct {
	taskFactory TaskCreator
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory TaskCreator,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent creates a URL check task from the event payload and submits it.
// Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeCheckPackageURLs {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		PackageID string `json:"package_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	packageID, err := uuid.Parse(payload.PackageID)
	if err != nil {
		h.logger.Error("invalid package ID",
			"error", err,
			"package_id", payload.PackageID,
			"event_id", event.ID)
		return fmt.Errorf("invalid package ID: %w", err)
	}

	task, err := h.taskFactory.CreateTask(packageID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"package_id", packageID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"package_id", packageID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", task.ID(),
		"package_id", packageID,
		"event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
var _ TaskSubmitter = (*TaskRunner)(nil)
