// Package main implements the pkgwatch API server. It serves the package
// catalog over HTTP, runs URL checks in a background task runner, and can
// apply database migrations instead of serving.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/pkgwatch/internal/config"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/phrazzld/pkgwatch/internal/platform/postgres"
)

// options are the command line flags of the server.
type options struct {
	migrate string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pkgwatch", flag.ContinueOnError)
	fs.StringVar(&opts.migrate, "migrate", "",
		"run a migration command (up, down, status, reset, version) and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch opts.migrate {
	case "", postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus,
		postgres.MigrateReset, postgres.MigrateVersion:
		return opts, nil
	default:
		return options{}, fmt.Errorf("unknown migration command %q", opts.migrate)
	}
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("pkgwatch: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_count", cfg.Task.WorkerCount,
		"sweep_interval", cfg.Check.SweepInterval())

	db, err := setupAppDatabase(ctx, cfg.Database.URL, l)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer func() { _ = db.Close() }()
		return runMigration(ctx, db, opts.migrate, l)
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func runMigration(ctx context.Context, db *sql.DB, command string, l *slog.Logger) error {
	l.Info("Executing migrations", "command", command)
	if err := postgres.Migrate(ctx, db, command, l); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	l.Info("Migrations finished", "command", command)
	return nil
}
