package governance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/de-tools/tagwarden/pkg/adapters"
	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/services/inventory"
	"github.com/de-tools/tagwarden/pkg/services/policy"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultDeleteConcurrency = 8

type Notifier interface {
	Publish(ctx context.Context, run *domain.RunReport) error
}

type HistoryStore interface {
	Add(ctx context.Context, summary domain.RunSummary) error
}

type Options struct {
	Mode        domain.RunMode
	GracePeriod time.Duration
	Region      string
	// DeleteConcurrency bounds in-flight deletions per resource type
	DeleteConcurrency int
}

// Orchestrator runs one governance pass over every registered scanner
type Orchestrator struct {
	registry    *inventory.Registry
	policy      policy.Policy
	gate        policy.Gate
	mode        domain.RunMode
	region      string
	concurrency int
	notifier    Notifier
	history     HistoryStore
	now         func() time.Time
}

// NewOrchestrator wires the run. notifier and history may be nil.
func NewOrchestrator(
	registry *inventory.Registry,
	pol policy.Policy,
	opts Options,
	notifier Notifier,
	history HistoryStore,
) *Orchestrator {
	concurrency := opts.DeleteConcurrency
	if concurrency <= 0 {
		concurrency = DefaultDeleteConcurrency
	}
	mode := opts.Mode
	if mode == "" {
		mode = domain.RunModeDryRun
	}

	return &Orchestrator{
		registry:    registry,
		policy:      pol,
		gate:        policy.NewGate(opts.GracePeriod),
		mode:        mode,
		region:      opts.Region,
		concurrency: concurrency,
		notifier:    notifier,
		history:     history,
		now:         time.Now,
	}
}

// Run scans every resource type in parallel and merges the per-type results.
// Scan, tag lookup and deletion failures are recorded in the report; none of them fails the run.
func (o *Orchestrator) Run(ctx context.Context) *domain.RunReport {
	run := &domain.RunReport{
		ID:        uuid.NewString(),
		Mode:      o.mode,
		Region:    o.region,
		StartedAt: o.now(),
		Report:    domain.NewScanReport(),
	}

	logger := zerolog.Ctx(ctx).With().
		Str("run_id", run.ID).
		Str("mode", string(run.Mode)).
		Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Msg("governance run started")

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, scanner := range o.registry.Scanners() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report := o.runType(ctx, scanner)

			mu.Lock()
			defer mu.Unlock()
			run.Report.Merge(report)
		}()
	}
	wg.Wait()

	run.FinishedAt = o.now()

	totals := run.Report.Totals()
	logger.Info().
		Int("scanned", totals.Scanned).
		Int("non_compliant", totals.NonCompliant).
		Int("deleted", totals.Deleted).
		Int("in_grace_period", totals.InGracePeriod).
		Int("errors", len(run.Report.Errors)).
		Dur("duration", run.Duration()).
		Msg("governance run finished")

	o.notify(ctx, run)
	o.record(ctx, run)

	return run
}

func (o *Orchestrator) runType(ctx context.Context, scanner inventory.Scanner) *domain.ScanReport {
	rt := scanner.GetResourceType()
	logger := zerolog.Ctx(ctx).With().Str("resource_type", rt.String()).Logger()
	ctx = logger.WithContext(ctx)

	var mu sync.Mutex
	report := domain.NewScanReport()
	report.Update(rt, func(*domain.TypeCounters) {})

	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)

	for record, err := range scanner.Scan(ctx) {
		if err != nil {
			mu.Lock()
			report.AddError(runErrorFor(rt, err))
			mu.Unlock()
			logger.Warn().Err(err).Msg("resource scan error")
			continue
		}

		mu.Lock()
		report.Update(rt, func(c *domain.TypeCounters) { c.Scanned++ })
		mu.Unlock()

		verdict := o.policy.Evaluate(record.Tags)
		if verdict.Compliant {
			continue
		}

		mu.Lock()
		report.Update(rt, func(c *domain.TypeCounters) { c.NonCompliant++ })
		mu.Unlock()

		resLogger := logger.With().
			Str("resource_id", record.ID).
			Strs("missing_tags", verdict.Missing).
			Logger()

		if o.gate.Protected(record.CreatedAt, o.now()) {
			mu.Lock()
			report.Update(rt, func(c *domain.TypeCounters) { c.InGracePeriod++ })
			mu.Unlock()
			resLogger.Info().Msg("non-compliant resource within grace period")
			continue
		}

		if o.mode.Simulated() {
			resLogger.Info().Msg("dry run: would delete non-compliant resource")
			continue
		}

		g.Go(func() error {
			outcome := o.delete(ctx, scanner, record)

			mu.Lock()
			defer mu.Unlock()
			if outcome.Succeeded {
				report.Update(rt, func(c *domain.TypeCounters) { c.Deleted++ })
				resLogger.Info().Msg("deleted non-compliant resource")
				return nil
			}
			report.AddError(domain.RunError{
				Type:       rt,
				ResourceID: record.ID,
				Kind:       domain.ErrorKindDeletion,
				Message:    errors.Unwrap(outcome.Err).Error(),
			})
			resLogger.Error().Err(outcome.Err).Msg("failed to delete non-compliant resource")
			return nil
		})
	}

	// deletion goroutines never return an error; failures are in the report
	_ = g.Wait()

	return report
}

func (o *Orchestrator) delete(ctx context.Context, scanner inventory.Scanner, record domain.ResourceRecord) domain.DeletionOutcome {
	if err := scanner.Delete(ctx, record); err != nil {
		return domain.DeletionOutcome{
			Attempted: true,
			Err: &domain.DeletionError{
				Type:       record.Type,
				ResourceID: record.ID,
				Err:        err,
			},
		}
	}
	return domain.DeletionOutcome{Attempted: true, Succeeded: true}
}

func runErrorFor(rt domain.ResourceType, err error) domain.RunError {
	var lookupErr *domain.TagLookupError
	if errors.As(err, &lookupErr) {
		return domain.RunError{
			Type:       rt,
			ResourceID: lookupErr.ResourceID,
			Kind:       domain.ErrorKindTagLookup,
			Message:    lookupErr.Err.Error(),
		}
	}
	return domain.RunError{
		Type:    rt,
		Kind:    domain.ErrorKindScan,
		Message: err.Error(),
	}
}

func (o *Orchestrator) notify(ctx context.Context, run *domain.RunReport) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Publish(ctx, run); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to publish run report")
	}
}

func (o *Orchestrator) record(ctx context.Context, run *domain.RunReport) {
	if o.history == nil {
		return
	}
	logger := zerolog.Ctx(ctx)

	summary, err := adapters.CleanupRunSummary(run)
	if err != nil {
		logger.Error().Err(err).Msg("failed to summarize run")
		return
	}
	if err := o.history.Add(ctx, summary); err != nil {
		logger.Error().Err(err).Msg("failed to store run history")
	}
}
