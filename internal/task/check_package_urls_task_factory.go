package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/notify"
)

// ErrUnknownTaskType is returned when restoring a task of a type the factory does not build.
var ErrUnknownTaskType = errors.New("unknown task type")

// CheckPackageURLsTaskFactory creates URL check tasks with shared dependencies
type CheckPackageURLsTaskFactory struct {
	packages PackageRepository
	tags     TagRepository
	checker  URLChecker
	notifier notify.Notifier
	opts     CheckOptions
	logger   *slog.Logger
}

// NewCheckPackageURLsTaskFactory creates a new factory
func NewCheckPackageURLsTaskFactory(
	packages PackageRepository,
	tags TagRepository,
	checker URLChecker,
	notifier notify.Notifier,
	opts CheckOptions,
	logger *slog.Logger,
) (*CheckPackageURLsTaskFactory, error) {
	if packages == nil || tags == nil || checker == nil || notifier == nil {
		return nil, errors.New("task factory requires packages, tags, checker and notifier")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckPackageURLsTaskFactory{
		packages: packages,
		tags:     tags,
		checker:  checker,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}, nil
}

// CreateTask creates a URL check task for the given package
func (f *CheckPackageURLsTaskFactory) CreateTask(packageID uuid.UUID) (Task, error) {
	return NewCheckPackageURLsTask(packageID, f.packages, f.tags, f.checker, f.notifier, f.opts, f.logger)
}

// RestoreTask rebuilds a stored URL check task, keeping its original ID
func (f *CheckPackageURLsTaskFactory) RestoreTask(id uuid.UUID, taskType string, payload []byte) (Task, error) {
	if taskType != TaskTypeCheckPackageURLs {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}

	var p CheckPackageURLsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode task payload: %w", err)
	}

	return newCheckPackageURLsTask(id, p.PackageID, f.packages, f.tags, f.checker, f.notifier, f.opts, f.logger)
}

var _ TaskRestorer = (*CheckPackageURLsTaskFactory)(nil)
