package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/internal/infrastructure"
	"github.com/yourusername/ncea-extract-go/internal/metrics"
)

// Resolver walks the ranked providers for one task until a file is found
// on disk or fetched
type Resolver struct {
	providers []domain.Provider
	fetcher   domain.Fetcher
	metrics   *metrics.Recorder
	logger    *zap.Logger
}

// NewResolver creates a resolver over providers in priority order
func NewResolver(providers []domain.Provider, fetcher domain.Fetcher, recorder *metrics.Recorder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		providers: providers,
		fetcher:   fetcher,
		metrics:   recorder,
		logger:    logger,
	}
}

type resolveState int

const (
	stateTryProvider resolveState = iota
	stateSkipped
	stateDownloaded
	stateExhausted
)

// resolution is the state of one Resolve call. index is the only state
// variable that moves between provider attempts.
type resolution struct {
	task     domain.DownloadTask
	state    resolveState
	index    int
	attempts int
	// hardFailure is set once a provider had the resource but failed to deliver it;
	// lastFailure is the most recent such failure
	hardFailure bool
	lastFailure domain.Outcome
	result      domain.Outcome
}

// Resolve runs the provider chain for a task and returns its single outcome.
// Providers are tried strictly in order; the first existing file or
// successful fetch ends the chain.
func (r *Resolver) Resolve(ctx context.Context, task domain.DownloadTask) domain.Outcome {
	res := &resolution{task: task, state: stateTryProvider}
	for res.state == stateTryProvider {
		r.step(ctx, res)
	}

	if res.state == stateExhausted {
		res.result = r.exhausted(res)
	}
	res.result.Category = task.Kind.Category()
	return res.result
}

// step performs one tryProvider transition
func (r *Resolver) step(ctx context.Context, res *resolution) {
	if res.index >= len(r.providers) {
		res.state = stateExhausted
		return
	}
	if err := ctx.Err(); err != nil {
		res.hardFailure = true
		res.lastFailure = domain.Failed(domain.ReasonCancelled, "%v", err)
		res.state = stateExhausted
		return
	}

	provider := r.providers[res.index]
	task := res.task
	res.index++

	rawURL, err := provider.URLFor(task.Standard, task.Year, task.Kind)
	if errors.Is(err, domain.ErrNotAvailable) {
		return
	}
	if err != nil {
		res.attempts++
		res.hardFailure = true
		res.lastFailure = domain.Failed(domain.ReasonTransport, "%s: %v", provider.Name(), err)
		return
	}

	if res.index > 1 {
		r.logger.Info("Trying fallback provider",
			zap.String("provider", provider.Name()),
			zap.String("task", task.String()))
	}

	destPath, err := destinationPath(task, rawURL)
	if err != nil {
		res.attempts++
		res.hardFailure = true
		res.lastFailure = domain.Failed(domain.ReasonTransport, "%s: %v", provider.Name(), err)
		return
	}

	if infrastructure.FileExists(destPath) {
		r.logger.Debug("Already downloaded",
			zap.String("task", task.String()),
			zap.String("path", destPath))
		res.result = domain.Skipped(destPath)
		res.result.Provider = provider.Name()
		res.result.URL = rawURL
		res.state = stateSkipped
		return
	}

	res.attempts++
	start := time.Now()
	outcome := r.fetcher.Fetch(ctx, rawURL, destPath)
	r.metrics.ObserveAttempt(provider.Name(), outcome, time.Since(start))
	outcome.Provider = provider.Name()
	outcome.URL = rawURL

	if outcome.Kind == domain.OutcomeDownloaded {
		r.logger.Info("Downloaded",
			zap.String("task", task.String()),
			zap.String("provider", provider.Name()),
			zap.String("path", destPath),
			zap.Int64("bytes", outcome.Bytes))
		res.result = outcome
		res.state = stateDownloaded
		return
	}

	r.logger.Debug("Provider attempt failed",
		zap.String("task", task.String()),
		zap.String("provider", provider.Name()),
		zap.String("url", rawURL),
		zap.String("reason", string(outcome.Reason)),
		zap.String("detail", outcome.Detail))

	if outcome.Reason != domain.ReasonNotFound {
		res.hardFailure = true
		res.lastFailure = outcome
	}
}

// exhausted builds the outcome for a chain that found nothing. If any
// provider failed for a reason other than "not found" the task is Failed,
// otherwise it is Missed.
func (r *Resolver) exhausted(res *resolution) domain.Outcome {
	if res.hardFailure {
		o := res.lastFailure
		o.Kind = domain.OutcomeFailed
		r.logger.Warn("Download failed",
			zap.String("task", res.task.String()),
			zap.Int("attempts", res.attempts),
			zap.String("reason", string(o.Reason)),
			zap.String("detail", o.Detail))
		return o
	}

	r.logger.Warn("No provider has this file",
		zap.String("task", res.task.String()),
		zap.Int("attempts", res.attempts))
	return domain.Missed(fmt.Sprintf("%d providers tried", res.attempts))
}

// destinationPath derives DestDir/Kind/<last URL path segment>
func destinationPath(task domain.DownloadTask, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" || strings.HasPrefix(name, "..") {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}
	return filepath.Join(task.DestDir, string(task.Kind), name), nil
}
