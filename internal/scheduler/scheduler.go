// Package scheduler runs named jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/samvad-hq/okbot/internal/logger"
)

const defaultJobTimeout = 30 * time.Minute

// Job is a scheduled task.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Runs of the same job never overlap.
type Scheduler struct {
	cron       *cron.Cron
	parent     context.Context
	jobTimeout time.Duration
	log        logger.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// New creates a scheduler whose jobs run under ctx with the given per-run timeout.
func New(ctx context.Context, jobTimeout time.Duration, log logger.Logger) *Scheduler {
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	log = logger.Ensure(log)
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{log}),
			cron.SkipIfStillRunning(cronLogger{log}),
		)),
		parent:     ctx,
		jobTimeout: jobTimeout,
		log:        log,
		jobs:       make(map[string]cron.EntryID),
	}
}

// AddJob registers job under name with a standard 5-field cron spec or a descriptor
// such as "@every 10m".
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	entryID, err := s.cron.AddFunc(spec, func() { s.runJob(name, job) })
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = entryID
	s.mu.Unlock()

	s.log.InfoObj("job scheduled", "scheduler_job", map[string]any{"name": name, "spec": spec})
	return nil
}

func (s *Scheduler) runJob(name string, job Job) {
	if s.parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.parent, s.jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.ErrorObj("job failed", "scheduler_job", map[string]any{
			"name":        name,
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return
	}
	s.log.InfoObj("job completed", "scheduler_job", map[string]any{
		"name":        name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// Next returns the next run time of the named job. Before the cron loop has planned the
// entry it is computed from the schedule.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(id)
	if !entry.Next.IsZero() {
		return entry.Next, true
	}
	if entry.Schedule == nil {
		return time.Time{}, false
	}
	return entry.Schedule.Next(time.Now()), true
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct{ log logger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.DebugObj(msg, "cron", pairs(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := pairs(keysAndValues)
	fields["error"] = err.Error()
	c.log.ErrorObj(msg, "cron", fields)
}

func pairs(kv []interface{}) map[string]any {
	out := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}
