package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrJobAlreadyRunning is returned when a second unit of work is started
// for the same job id.
var ErrJobAlreadyRunning = errors.New("job already running")

// Runner schedules one unit of work per job id. Submission is
// fire-and-forget: the caller returns immediately and the work runs on its
// own goroutine. No ordering is guaranteed across different jobs.
type Runner struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	running map[string]struct{}
	logger  *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		running: make(map[string]struct{}),
		logger:  logger,
	}
}

// Start launches fn for jobID. At most one unit of work may run per id.
func (r *Runner) Start(ctx context.Context, jobID string, fn func(context.Context)) error {
	r.mu.Lock()
	if _, exists := r.running[jobID]; exists {
		r.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	r.running[jobID] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.running, jobID)
			r.mu.Unlock()
		}()
		r.logger.Info("runner.start", "job_id", jobID)
		fn(ctx)
		r.logger.Info("runner.done", "job_id", jobID)
	}()
	return nil
}

// IsRunning reports whether a unit of work is active for jobID.
func (r *Runner) IsRunning(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.running[jobID]
	return exists
}

// Wait blocks until all in-flight units of work finish.
func (r *Runner) Wait() {
	r.wg.Wait()
}
