package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// URLCheckRequester queues URL checks for all packages.
type URLCheckRequester interface {
	RequestAllURLChecks(ctx context.Context) (int, error)
}

// URLCheckScheduler runs a URL check sweep on a fixed interval.
type URLCheckScheduler struct {
	requester URLCheckRequester
	interval  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewURLCheckScheduler creates a scheduler. A zero or negative interval
// disables it: Start and Stop become no-ops.
func NewURLCheckScheduler(
	requester URLCheckRequester,
	interval time.Duration,
	logger *slog.Logger,
) *URLCheckScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &URLCheckScheduler{
		requester: requester,
		interval:  interval,
		logger:    logger.With("component", "url_check_scheduler"),
	}
}

// Enabled reports whether the scheduler has a positive interval.
func (s *URLCheckScheduler) Enabled() bool {
	return s.interval > 0
}

// Start begins the periodic sweep. Calling Start on a running or disabled
// scheduler does nothing.
func (s *URLCheckScheduler) Start() {
	if !s.Enabled() {
		s.logger.Info("URL check sweep disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.run(ctx)
	s.logger.Info("URL check sweep started", "interval", s.interval)
}

// Stop ends the sweep and waits for an in-flight sweep to return.
func (s *URLCheckScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("URL check sweep stopped")
}

// IsRunning returns whether the sweep loop is active.
func (s *URLCheckScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce performs a single sweep.
func (s *URLCheckScheduler) RunOnce(ctx context.Context) (int, error) {
	return s.requester.RequestAllURLChecks(ctx)
}

func (s *URLCheckScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// sweep is bounded by the interval so a slow sweep never overlaps the next tick.
func (s *URLCheckScheduler) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	start := time.Now()
	n, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("URL check sweep failed",
			"error", err,
			"requested", n,
			"duration", time.Since(start))
		return
	}
	s.logger.Info("URL check sweep completed",
		"requested", n,
		"duration", time.Since(start))
}
