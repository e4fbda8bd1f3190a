package urlcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// Result is the outcome class of a single URL check.
type Result int

// Possible check results
const (
	Valid Result = iota
	Invalid
	CheckFailed
)

// String returns the lowercase name of the result.
func (r Result) String() string {
	switch r {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case CheckFailed:
		return "check_failed"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// IsValid reports whether the URL is reachable. CheckFailed counts as not valid.
func (r Result) IsValid() bool {
	return r == Valid
}

// Outcome describes the check of one URL.
type Outcome struct {
	URL        string
	Result     Result
	StatusCode int   // zero when the request failed
	Err        error // set only for CheckFailed
}

// maxDrainBytes bounds how much of a response body is read so the
// connection can be reused.
const maxDrainBytes = 64 << 10

// Config holds the settings of a Checker.
type Config struct {
	// Timeout bounds each request, including redirects and reading headers.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Checker performs URL checks with a shared HTTP client.
type Checker struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// New creates a Checker backed by a pooled client with the configured timeout.
func New(cfg Config, logger *slog.Logger) *Checker {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = cfg.Timeout
	return NewWithClient(client, cfg.UserAgent, logger)
}

// NewWithClient creates a Checker that uses the given client.
func NewWithClient(client *http.Client, userAgent string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		client:    client,
		userAgent: userAgent,
		logger:    logger.With("component", "url_checker"),
	}
}

// Check issues a GET for rawURL and classifies the response.
func (c *Checker) Check(ctx context.Context, rawURL string) Outcome {
	out := Outcome{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		out.Result = CheckFailed
		out.Err = fmt.Errorf("failed to build request: %w", err)
		return out
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		out.Result = CheckFailed
		out.Err = err
		c.logger.Debug("url check failed", "url", rawURL, "error", err)
		return out
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	out.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		out.Result = Valid
	} else {
		out.Result = Invalid
	}

	c.logger.Debug("url checked",
		"url", rawURL,
		"status_code", resp.StatusCode,
		"result", out.Result.String())
	return out
}

// FirstInvalid checks urls in order and stops at the first one that is not
// valid, returning its outcome and true. Blank entries are skipped. When every
// URL is valid it returns false.
func (c *Checker) FirstInvalid(ctx context.Context, urls []string) (Outcome, bool) {
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		out := c.Check(ctx, u)
		if !out.Result.IsValid() {
			return out, true
		}
	}
	return Outcome{}, false
}
