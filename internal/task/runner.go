package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration

	// PendingRecheckInterval defines how often stored pending tasks that no
	// worker or queue slot holds are put back on the queue.
	// If zero, defaults to 30 seconds
	PendingRecheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
		PendingRecheckInterval: 30 * time.Second,
	}
}

// TaskRunner manages background task processing.
//
// The runner remembers which tasks it currently holds, either queued or
// executing. A stored pending task that the runner does not hold was deferred
// because the queue was full, or left behind by a failed status write, and is
// requeued by the monitor once there is room.
type TaskRunner struct {
	store      TaskStore
	queue      *TaskQueue
	restorer   TaskRestorer
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)

	// heldMu also serializes the store snapshots taken by claimUnheld, so a
	// task cannot be released between being read as pending and checked.
	heldMu sync.Mutex
	held   map[uuid.UUID]struct{}
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval <= 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if config.PendingRecheckInterval <= 0 {
		config.PendingRecheckInterval = 30 * time.Second
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		held:       make(map[uuid.UUID]struct{}),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// SetRestorer sets the restorer used to rebuild tasks loaded from the store
// during recovery. Without one, stored tasks are requeued as loaded.
func (r *TaskRunner) SetRestorer(restorer TaskRestorer) {
	r.restorer = restorer
}

// Submit persists a task and adds it to the in-memory queue. When the queue
// is full the task stays pending in the store and is queued later by the
// monitor, so a full queue is not an error.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if !r.hold(task.ID()) {
		return fmt.Errorf("task %s already submitted", task.ID())
	}

	if err := r.store.SaveTask(ctx, task); err != nil {
		r.release(task.ID())
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		r.release(task.ID())
		if errors.Is(err, ErrQueueFull) {
			r.logger.Warn("task queue full, task deferred",
				"task_id", task.ID(),
				"task_type", task.Type())
			return nil
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks and begins processing
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.monitor()

	r.logger.Info("task runner started", "worker_count", r.config.WorkerCount)
	return nil
}

// Stop gracefully shuts down the task runner. In-flight tasks see their
// context cancelled and are returned to pending for the next start.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.queue.Close()
		r.logger.Info("task runner stopped")
	})
}

// Recover loads unfinished tasks from the store and queues the ones this
// runner does not already hold.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pendingTasks, err := r.claimUnheld(func() ([]Task, error) {
		return r.store.GetPendingTasks(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	// Tasks left in processing were interrupted by a crash, regardless of age
	processingTasks, err := r.claimUnheld(func() ([]Task, error) {
		return r.store.GetProcessingTasks(ctx, 0)
	})
	if err != nil {
		r.releaseAll(pendingTasks)
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	processingTasks = r.resetToPending(ctx, processingTasks, "Reset after recovery")
	r.requeueAll(ctx, append(pendingTasks, processingTasks...), "recovery")
	return nil
}

// hold marks a task as held by this runner. It reports false if the task
// is already held.
func (r *TaskRunner) hold(id uuid.UUID) bool {
	r.heldMu.Lock()
	defer r.heldMu.Unlock()
	if _, ok := r.held[id]; ok {
		return false
	}
	r.held[id] = struct{}{}
	return true
}

func (r *TaskRunner) release(id uuid.UUID) {
	r.heldMu.Lock()
	defer r.heldMu.Unlock()
	delete(r.held, id)
}

func (r *TaskRunner) releaseAll(tasks []Task) {
	for _, task := range tasks {
		r.release(task.ID())
	}
}

// claimUnheld loads tasks from the store and holds the ones nobody holds yet.
func (r *TaskRunner) claimUnheld(load func() ([]Task, error)) ([]Task, error) {
	r.heldMu.Lock()
	defer r.heldMu.Unlock()

	tasks, err := load()
	if err != nil {
		return nil, err
	}

	claimed := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := r.held[task.ID()]; ok {
			continue
		}
		r.held[task.ID()] = struct{}{}
		claimed = append(claimed, task)
	}
	return claimed, nil
}

// resetToPending moves claimed processing tasks back to pending and returns
// the ones it moved. Tasks whose reset fails are released.
func (r *TaskRunner) resetToPending(ctx context.Context, tasks []Task, reason string) []Task {
	kept := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending, reason); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			r.release(task.ID())
			continue
		}
		kept = append(kept, task)
	}
	return kept
}

// requeueAll requeues claimed tasks in order. Once the queue is full the
// rest are released and wait for the next pending recheck.
func (r *TaskRunner) requeueAll(ctx context.Context, tasks []Task, origin string) int {
	for i, task := range tasks {
		if err := r.requeue(ctx, task, origin); errors.Is(err, ErrQueueFull) {
			r.releaseAll(tasks[i+1:])
			r.logger.Info("task queue full, deferring remaining tasks",
				"origin", origin,
				"deferred", len(tasks)-i)
			return i
		}
	}
	return len(tasks)
}

// requeue restores a claimed task and puts it back on the queue. The task is
// released when it cannot be queued.
func (r *TaskRunner) requeue(ctx context.Context, task Task, origin string) error {
	log := r.logger.With("task_id", task.ID(), "task_type", task.Type(), "origin", origin)

	if r.restorer != nil {
		restored, err := r.restorer.RestoreTask(task.ID(), task.Type(), task.Payload())
		if err != nil {
			log.Error("failed to restore task", "error", err)
			if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed,
				fmt.Sprintf("cannot restore task: %v", err)); updateErr != nil {
				log.Error("failed to mark unrestorable task as failed", "error", updateErr)
			}
			r.release(task.ID())
			return err
		}
		task = restored
	}

	if err := r.queue.Enqueue(task); err != nil {
		r.release(task.ID())
		if !errors.Is(err, ErrQueueFull) {
			log.Error("failed to requeue task", "error", err)
		}
		return err
	}
	log.Debug("requeued task")
	return nil
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	tasks := r.queue.GetChannel()
	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-tasks:
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task. The task stays held until
// its final status is written.
func (r *TaskRunner) processTask(task Task, workerID int) {
	defer r.release(task.ID())

	// Status writes use a detached context so they land even during shutdown.
	statusCtx := context.Background()
	log := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", "error", err)
		return
	}

	log.Info("processing task")

	execCtx := logger.WithLogger(r.ctx, log)
	err := task.Execute(execCtx)

	switch {
	case err != nil && r.ctx.Err() != nil && errors.Is(err, context.Canceled):
		log.Warn("task interrupted by shutdown, returning to pending", "error", err)
		if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusPending,
			"Interrupted by shutdown"); updateErr != nil {
			log.Error("failed to reset interrupted task", "error", updateErr)
		}

	case err != nil:
		log.Error("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)

	default:
		log.Info("task completed successfully")
		if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
			log.Error("failed to update task status to completed", "error", updateErr)
		}
	}
}

// monitor periodically resets tasks stuck in processing and requeues
// pending tasks that nothing holds.
func (r *TaskRunner) monitor() {
	defer r.wg.Done()

	stuck := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer stuck.Stop()
	pending := time.NewTicker(r.config.PendingRecheckInterval)
	defer pending.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-stuck.C:
			r.resetStuckTasks(context.Background())

		case <-pending.C:
			r.requeuePending(context.Background())
		}
	}
}

// resetStuckTasks resets processing tasks older than StuckTaskAge that this
// runner is not executing, such as those left by another instance.
func (r *TaskRunner) resetStuckTasks(ctx context.Context) {
	stuckTasks, err := r.claimUnheld(func() ([]Task, error) {
		return r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	})
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}
	if len(stuckTasks) == 0 {
		return
	}

	r.logger.Info("found stuck tasks", "count", len(stuckTasks))
	stuckTasks = r.resetToPending(ctx, stuckTasks, "Reset after being stuck in processing state")
	r.requeueAll(ctx, stuckTasks, "stuck")
}

// requeuePending queues stored pending tasks that nothing holds.
func (r *TaskRunner) requeuePending(ctx context.Context) {
	orphans, err := r.claimUnheld(func() ([]Task, error) {
		return r.store.GetPendingTasks(ctx)
	})
	if err != nil {
		r.logger.Error("failed to check for pending tasks", "error", err)
		return
	}
	if len(orphans) == 0 {
		return
	}

	queued := r.requeueAll(ctx, orphans, "pending")
	r.logger.Info("requeued pending tasks", "queued", queued, "found", len(orphans))
}
