package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/phrazzld/pkgwatch/internal/store"
	"github.com/phrazzld/pkgwatch/internal/task"
)

// PostgresTaskStore implements the task.TaskStore interface using PostgreSQL
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgresTaskStore
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ task.TaskStore = (*PostgresTaskStore)(nil)

// SaveTask persists a task to the database
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID(), t.Type(), t.Payload(), string(t.Status()), now, now)
	if err != nil {
		log.Error("failed to save task",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		return fmt.Errorf("failed to save task to database: %w", MapError(err))
	}

	return nil
}

// UpdateTaskStatus updates the status of a task in the database.
// Updating an unknown task is a logged no-op.
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`, string(status), sql.NullString{String: errorMsg, Valid: errorMsg != ""}, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task status",
			"task_id", taskID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn("no task found with ID to update status", "task_id", taskID)
	}

	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status
func (s *PostgresTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

// getTasksByStatus gets tasks by status, optionally only those whose status
// has not changed for longer than olderThan
func (s *PostgresTaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM tasks
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []interface{}{string(status)}
	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM tasks
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status", "status", status, "error", err)
		return nil, fmt.Errorf("failed to query tasks by status: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		var t storedTask
		var taskStatus string
		var errorMessage sql.NullString
		if err := rows.Scan(&t.id, &t.taskType, &t.payload, &taskStatus, &errorMessage, &t.createdAt, &t.updatedAt); err != nil {
			log.Error("failed to scan task row", "status", status, "error", err)
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		t.status = task.TaskStatus(taskStatus)
		t.errorMessage = errorMessage.String
		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", "status", status, "error", err)
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// WithTx returns a task store bound to the given transaction
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// errNotRestored is returned by tasks loaded from the database that were not
// rebuilt through a task.TaskRestorer before execution.
var errNotRestored = errors.New("stored task must be restored before execution")

// storedTask is a task record loaded from the database. It carries the data
// needed to rebuild the executable task.
type storedTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

func (t *storedTask) ID() uuid.UUID                 { return t.id }
func (t *storedTask) Type() string                  { return t.taskType }
func (t *storedTask) Payload() []byte               { return t.payload }
func (t *storedTask) Status() task.TaskStatus       { return t.status }
func (t *storedTask) ErrorMessage() string          { return t.errorMessage }
func (t *storedTask) Execute(context.Context) error { return errNotRestored }
