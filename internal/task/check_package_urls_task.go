package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/notify"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/phrazzld/pkgwatch/internal/urlcheck"
)

// PackageRepository is the package storage needed by the URL check task.
type PackageRepository interface {
	// GetWithRelations loads a package with its author, contributors and tags
	GetWithRelations(ctx context.Context, id uuid.UUID) (*domain.Package, error)

	// AttachTag links a tag to a package; attaching twice is a no-op
	AttachTag(ctx context.Context, packageID, tagID uuid.UUID) error
}

// TagRepository is the tag storage needed by the URL check task.
type TagRepository interface {
	FindOrCreate(ctx context.Context, tag *domain.Tag) (uuid.UUID, error)
}

// URLChecker finds the first unreachable URL in a list.
type URLChecker interface {
	FirstInvalid(ctx context.Context, urls []string) (urlcheck.Outcome, bool)
}

var _ URLChecker = (*urlcheck.Checker)(nil)

// CheckOptions tunes the behaviour of the URL check task.
type CheckOptions struct {
	// SkipUnlinkedContributors makes the contributor fan-out step over
	// contributors without a user account instead of stopping at the first one.
	SkipUnlinkedContributors bool
}

// CheckPackageURLsPayload is the persisted payload of a URL check task
type CheckPackageURLsPayload struct {
	PackageID uuid.UUID `json:"package_id"`
}

// CheckResult summarizes a finished URL check.
type CheckResult struct {
	Invalid  bool
	Outcome  urlcheck.Outcome
	Notified int
}

// CheckPackageURLsTask verifies that a package's URLs respond and, when one
// does not, tags the package with the error tag and notifies the package's
// author and linked contributors.
type CheckPackageURLsTask struct {
	id        uuid.UUID
	packageID uuid.UUID
	packages  PackageRepository
	tags      TagRepository
	checker   URLChecker
	notifier  notify.Notifier
	opts      CheckOptions
	logger    *slog.Logger

	mu     sync.Mutex
	status TaskStatus
	result CheckResult
}

// NewCheckPackageURLsTask creates a task with a fresh ID.
func NewCheckPackageURLsTask(
	packageID uuid.UUID,
	packages PackageRepository,
	tags TagRepository,
	checker URLChecker,
	notifier notify.Notifier,
	opts CheckOptions,
	logger *slog.Logger,
) (*CheckPackageURLsTask, error) {
	return newCheckPackageURLsTask(uuid.New(), packageID, packages, tags, checker, notifier, opts, logger)
}

func newCheckPackageURLsTask(
	id uuid.UUID,
	packageID uuid.UUID,
	packages PackageRepository,
	tags TagRepository,
	checker URLChecker,
	notifier notify.Notifier,
	opts CheckOptions,
	logger *slog.Logger,
) (*CheckPackageURLsTask, error) {
	if packageID == uuid.Nil {
		return nil, domain.ErrEmptyPackageID
	}
	if packages == nil || tags == nil || checker == nil || notifier == nil {
		return nil, errors.New("url check task requires packages, tags, checker and notifier")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CheckPackageURLsTask{
		id:        id,
		packageID: packageID,
		packages:  packages,
		tags:      tags,
		checker:   checker,
		notifier:  notifier,
		opts:      opts,
		logger:    logger.With("task_type", TaskTypeCheckPackageURLs),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *CheckPackageURLsTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CheckPackageURLsTask) Type() string {
	return TaskTypeCheckPackageURLs
}

// PackageID returns the package this task checks
func (t *CheckPackageURLsTask) PackageID() uuid.UUID {
	return t.packageID
}

// Payload returns the task data as a byte slice
func (t *CheckPackageURLsTask) Payload() []byte {
	data, err := json.Marshal(CheckPackageURLsPayload{PackageID: t.packageID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err, "package_id", t.packageID)
		return []byte("{}")
	}
	return data
}

// Status returns the current task status
func (t *CheckPackageURLsTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the outcome of the last execution
func (t *CheckPackageURLsTask) Result() CheckResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

func (t *CheckPackageURLsTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute checks the package URLs. Store failures fail the task. Delivery
// failures of individual notifications are logged and do not.
func (t *CheckPackageURLsTask) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, t.logger).With(
		"task_id", t.id,
		"package_id", t.packageID,
	)

	t.setStatus(TaskStatusProcessing)

	if err := ctx.Err(); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("url check cancelled before start: %w", err)
	}

	pkg, err := t.packages.GetWithRelations(ctx, t.packageID)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to load package %s: %w", t.packageID, err)
	}

	outcome, invalid := t.checker.FirstInvalid(ctx, pkg.CheckableURLs())

	// A request aborted by cancellation says nothing about the URL.
	if err := ctx.Err(); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("url check cancelled: %w", err)
	}

	if !invalid {
		log.Debug("package urls are reachable", "package_name", pkg.Name)
		t.finish(CheckResult{})
		return nil
	}

	log.Warn("package url is not reachable",
		"package_name", pkg.Name,
		"url", outcome.URL,
		"result", outcome.Result.String(),
		"status_code", outcome.StatusCode,
		"error", outcome.Err)

	tagID, err := t.tags.FindOrCreate(ctx, domain.ErrorTag())
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to find or create %q tag: %w", domain.ErrorTagName, err)
	}

	if err := t.packages.AttachTag(ctx, pkg.ID, tagID); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to tag package %s: %w", pkg.ID, err)
	}

	notified := t.notifyResponsible(ctx, log, pkg)

	log.Info("package flagged with unreachable url",
		"url", outcome.URL,
		"tag_id", tagID,
		"notified", notified)

	t.finish(CheckResult{Invalid: true, Outcome: outcome, Notified: notified})
	return nil
}

func (t *CheckPackageURLsTask) finish(r CheckResult) {
	t.mu.Lock()
	t.result = r
	t.status = TaskStatusCompleted
	t.mu.Unlock()
}

// notifyResponsible notifies the author when they are a user, then each
// contributor in order. Unless SkipUnlinkedContributors is set, the
// contributor loop stops at the first contributor without a user account.
func (t *CheckPackageURLsTask) notifyResponsible(
	ctx context.Context,
	log *slog.Logger,
	pkg *domain.Package,
) int {
	sent := 0

	if pkg.Author.IsUser() {
		if t.send(ctx, log, *pkg.Author.UserID, pkg) {
			sent++
		}
	}

	for i, c := range pkg.Contributors {
		if !c.HasUser() {
			if t.opts.SkipUnlinkedContributors {
				continue
			}
			log.Info("stopping contributor notifications at contributor without user account",
				"contributor_id", c.ID,
				"position", i,
				"remaining", len(pkg.Contributors)-i-1)
			break
		}
		if t.send(ctx, log, *c.UserID, pkg) {
			sent++
		}
	}

	return sent
}

func (t *CheckPackageURLsTask) send(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	pkg *domain.Package,
) bool {
	if err := t.notifier.Notify(ctx, userID, domain.NotificationInvalidPackageURL, pkg); err != nil {
		log.Error("failed to notify user about invalid package url",
			"user_id", userID,
			"error", err)
		return false
	}
	return true
}
