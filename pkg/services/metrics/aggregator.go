package metrics

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
)

type Options struct {
	// NamespacePrefix is prepended to every metric namespace
	NamespacePrefix string
	Region          string
}

// Aggregator collects compliance, inventory, savings and cost metrics. It never deletes anything.
type Aggregator struct {
	registry *inventory.Registry
	policy   policy.Policy
	costs    CostProvider
	sink     Sink
	history  HistoryStore
	opts     Options
	now      func() time.Time
}

// NewAggregator wires the collection. costs and history may be nil.
func NewAggregator(
	registry *inventory.Registry,
	pol policy.Policy,
	costs CostProvider,
	sink Sink,
	history HistoryStore,
	opts Options,
) *Aggregator {
	return &Aggregator{
		registry: registry,
		policy:   pol,
		costs:    costs,
		sink:     sink,
		history:  history,
		opts:     opts,
		now:      time.Now,
	}
}

type typeInventory struct {
	records []domain.ResourceRecord
	errors  []domain.RunError
}

func (a *Aggregator) Collect(ctx context.Context) *domain.MetricsReport {
	report := &domain.MetricsReport{
		ID:          uuid.NewString(),
		Region:      a.opts.Region,
		CollectedAt: a.now(),
		Counts:      make(map[domain.ResourceType]int, len(domain.ResourceTypes)),
	}

	logger := zerolog.Ctx(ctx).With().Str("run_id", report.ID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Msg("metrics collection started")

	records := a.inventory(ctx, report)
	a.evaluate(report, records)
	report.EstimatedSavings = EstimateMonthlySavings(records)
	a.collectCosts(ctx, report)

	a.publish(ctx, report)

	logger.Info().
		Int("total", report.Compliance.Total).
		Float64("compliance_percentage", report.Compliance.Percentage).
		Float64("estimated_savings", report.EstimatedSavings).
		Int("published", report.PublishedPoints).
		Int("failed_publishes", report.FailedPublishes).
		Msg("metrics collection finished")

	a.record(ctx, report)
	return report
}

// inventory scans every type concurrently and returns the readable records in canonical type order
func (a *Aggregator) inventory(ctx context.Context, report *domain.MetricsReport) []domain.ResourceRecord {
	scanners := a.registry.Scanners()
	results := make([]typeInventory, len(scanners))

	var wg sync.WaitGroup
	for i, scanner := range scanners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = scanAll(ctx, scanner)
		}()
	}
	wg.Wait()

	var records []domain.ResourceRecord
	for i, scanner := range scanners {
		report.Counts[scanner.GetResourceType()] = len(results[i].records)
		records = append(records, results[i].records...)
		report.Errors = append(report.Errors, results[i].errors...)
	}
	return records
}

func scanAll(ctx context.Context, scanner inventory.Scanner) typeInventory {
	rt := scanner.GetResourceType()
	logger := zerolog.Ctx(ctx).With().Str("resource_type", rt.String()).Logger()

	var inv typeInventory
	for record, err := range scanner.Scan(ctx) {
		if err == nil {
			inv.records = append(inv.records, record)
			continue
		}

		logger.Warn().Err(err).Msg("resource scan error")
		var lookupErr *domain.TagLookupError
		if errors.As(err, &lookupErr) {
			inv.errors = append(inv.errors, domain.RunError{
				Type:       rt,
				ResourceID: lookupErr.ResourceID,
				Kind:       domain.ErrorKindTagLookup,
				Message:    lookupErr.Err.Error(),
			})
			continue
		}
		inv.errors = append(inv.errors, domain.RunError{
			Type:    rt,
			Kind:    domain.ErrorKindScan,
			Message: err.Error(),
		})
	}
	return inv
}

func (a *Aggregator) evaluate(report *domain.MetricsReport, records []domain.ResourceRecord) {
	compliant := 0
	for _, r := range records {
		verdict := a.policy.Evaluate(r.Tags)
		if verdict.Compliant {
			compliant++
			continue
		}
		report.NonCompliant = append(report.NonCompliant, domain.NonCompliantResource{
			Type:    r.Type,
			ID:      r.ID,
			Missing: verdict.Missing,
		})
	}

	report.Compliance = domain.ComplianceSummary{
		Total:        len(records),
		Compliant:    compliant,
		NonCompliant: len(records) - compliant,
		Percentage:   CompliancePercentage(len(records), compliant),
	}
}

// collectCosts queries each dimension independently; a failing dimension is omitted
func (a *Aggregator) collectCosts(ctx context.Context, report *domain.MetricsReport) {
	if a.costs == nil {
		report.UnavailableCosts = append(report.UnavailableCosts, domain.CostDimensions...)
		return
	}

	logger := zerolog.Ctx(ctx)
	report.CostWindow = CostWindow(report.CollectedAt)

	for _, dimension := range domain.CostDimensions {
		entries, err := a.costs.GetCostAndUsage(ctx, report.CostWindow, dimension)
		if err != nil {
			event := logger.Warn()
			if !errors.Is(err, domain.ErrDimensionUnavailable) {
				event = logger.Error()
			}
			event.Err(err).Str("dimension", string(dimension)).Msg("cost dimension omitted")
			report.UnavailableCosts = append(report.UnavailableCosts, dimension)
			continue
		}
		report.Rollups = append(report.Rollups, Rollup(dimension, entries))
	}
}

func (a *Aggregator) publish(ctx context.Context, report *domain.MetricsReport) {
	logger := zerolog.Ctx(ctx)
	for _, point := range Points(a.opts.NamespacePrefix, report) {
		if err := a.sink.PutMetric(ctx, point); err != nil {
			report.FailedPublishes++
			logger.Error().Err(err).
				Str("namespace", point.Namespace).
				Str("metric", point.Name).
				Msg("failed to publish metric")
			continue
		}
		report.PublishedPoints++
	}
}

func (a *Aggregator) record(ctx context.Context, report *domain.MetricsReport) {
	if a.history == nil {
		return
	}
	logger := zerolog.Ctx(ctx)

	summary, err := adapters.MetricsRunSummary(report)
	if err != nil {
		logger.Error().Err(err).Msg("failed to summarize metrics run")
		return
	}
	if err := a.history.Add(ctx, summary); err != nil {
		logger.Error().Err(err).Msg("failed to store run history")
	}
}
