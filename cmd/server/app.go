package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/pkgwatch/internal/config"
	"github.com/phrazzld/pkgwatch/internal/events"
	"github.com/phrazzld/pkgwatch/internal/jobs"
	"github.com/phrazzld/pkgwatch/internal/notify"
	"github.com/phrazzld/pkgwatch/internal/platform/postgres"
	"github.com/phrazzld/pkgwatch/internal/service"
	"github.com/phrazzld/pkgwatch/internal/service/auth"
	"github.com/phrazzld/pkgwatch/internal/store"
	"github.com/phrazzld/pkgwatch/internal/task"
	"github.com/phrazzld/pkgwatch/internal/urlcheck"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	packageStore      store.PackageStore
	tagStore          store.TagStore
	userStore         store.UserStore
	notificationStore store.NotificationStore
	taskStore         task.TaskStore

	tokenService   auth.TokenService
	passwordHasher auth.PasswordHasher
	packageService service.PackageService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
	scheduler    *jobs.URLCheckScheduler
}

// newApplication wires every dependency on top of an open database. The
// task runner and scheduler are created but not started; see start.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordHasher, err = auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	app.packageStore = postgres.NewPostgresPackageStore(db, logger)
	app.tagStore = postgres.NewPostgresTagStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	notifier, err := notify.NewStoreNotifier(app.notificationStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	checker := urlcheck.New(urlcheck.Config{
		Timeout:   cfg.Check.HTTPTimeout(),
		UserAgent: cfg.Check.UserAgent,
	}, logger)

	factory, err := task.NewCheckPackageURLsTaskFactory(
		app.packageStore,
		app.tagStore,
		checker,
		notifier,
		task.CheckOptions{SkipUnlinkedContributors: cfg.Check.SkipUnlinkedContributors},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:              cfg.Task.QueueSize,
		WorkerCount:            cfg.Task.WorkerCount,
		StuckTaskAge:           time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		PendingRecheckInterval: time.Duration(cfg.Task.PendingRecheckSeconds) * time.Second,
	}, logger)
	app.taskRunner.SetRestorer(factory)
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		logger.Warn("URL check task failed",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
	})

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(factory, app.taskRunner, logger))

	app.packageService, err = service.NewPackageService(
		db,
		app.packageStore,
		app.userStore,
		app.notificationStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create package service: %w", err)
	}

	app.scheduler = jobs.NewURLCheckScheduler(app.packageService, cfg.Check.SweepInterval(), logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// start launches the background components: the task runner first, so
// recovered and newly scheduled tasks have workers, then the sweep.
func (app *application) start() error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	app.scheduler.Start()
	return nil
}

// Run starts the background components and serves HTTP until ctx is
// cancelled or the process receives SIGINT/SIGTERM.
func (app *application) Run(ctx context.Context) error {
	router, err := app.setupRouter()
	if err != nil {
		app.cleanup()
		return err
	}

	if err := app.start(); err != nil {
		app.cleanup()
		return err
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
