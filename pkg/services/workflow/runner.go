package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job performs one run and returns its id
type Job func(ctx context.Context) string

type Runner struct {
	name     string
	job      Job
	done     chan struct{}
	progress chan RunnerProgress
	config   RunnerConfig
}

type RunnerConfig struct {
	Interval time.Duration
	// RunOnStart triggers the first run immediately instead of after one interval
	RunOnStart bool
}

type RunnerProgress struct {
	Runs      int64
	LastRunID string
	LastRunAt time.Time
}

func NewRunner(name string, job Job, config RunnerConfig) *Runner {
	return &Runner{
		name:     name,
		job:      job,
		done:     make(chan struct{}),
		progress: make(chan RunnerProgress, 100),
		config:   config,
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress reports every completed run. Updates are dropped when nobody reads them.
func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

// Run blocks until ctx is cancelled. Runs never overlap: a run longer than the
// interval delays the next one. A run in progress when ctx is cancelled completes
// before Run returns.
func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("job", r.name).Logger()
	defer close(r.done)
	defer close(r.progress)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	var runs int64
	execute := func() {
		start := time.Now()
		// cancellation stops the schedule, never the run in flight
		id := r.job(context.WithoutCancel(logger.WithContext(ctx)))
		runs++

		logger.Info().
			Str("run_id", id).
			Dur("duration", time.Since(start)).
			Int64("runs", runs).
			Msg("scheduled run finished")

		select {
		case r.progress <- RunnerProgress{Runs: runs, LastRunID: id, LastRunAt: start}:
		default:
		}
	}

	if r.config.RunOnStart {
		execute()
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("schedule stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			execute()
		}
	}
}
