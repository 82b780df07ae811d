package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/de-tools/tagwarden/pkg/models/api"
	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/models/store"
)

// CleanupRunSummary condenses a governance run for the history store; the payload is the API report
func CleanupRunSummary(run *domain.RunReport) (domain.RunSummary, error) {
	report := MapCleanupReportDomainToApi(run)
	payload, err := json.Marshal(report)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("failed to encode cleanup report: %w", err)
	}

	var totals domain.TypeCounters
	errorCount := 0
	if run.Report != nil {
		totals = run.Report.Totals()
		errorCount = len(run.Report.Errors)
	}

	return domain.RunSummary{
		ID:         run.ID,
		Kind:       domain.RunKindCleanup,
		Status:     domain.StatusFor(errorCount),
		Mode:       run.Mode,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Totals:     totals,
		ErrorCount: errorCount,
		Payload:    payload,
	}, nil
}

// MetricsRunSummary maps a metrics collection into the history store. Totals.Scanned is the
// evaluated resource count and Totals.NonCompliant the non-compliant count.
func MetricsRunSummary(r *domain.MetricsReport) (domain.RunSummary, error) {
	payload, err := json.Marshal(MapMetricsReportDomainToApi(r))
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("failed to encode metrics report: %w", err)
	}

	errorCount := len(r.Errors) + r.FailedPublishes
	return domain.RunSummary{
		ID:         r.ID,
		Kind:       domain.RunKindMetrics,
		Status:     domain.StatusFor(errorCount),
		Mode:       domain.RunModeDryRun,
		StartedAt:  r.CollectedAt,
		FinishedAt: r.CollectedAt,
		Totals: domain.TypeCounters{
			Scanned:      r.Compliance.Total,
			NonCompliant: r.Compliance.NonCompliant,
		},
		ErrorCount: errorCount,
		Payload:    payload,
	}, nil
}

func MapRunSummaryDomainToApi(s domain.RunSummary) api.RunSummary {
	return api.RunSummary{
		ID:         s.ID,
		Kind:       string(s.Kind),
		Status:     string(s.Status),
		Mode:       string(s.Mode),
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Totals:     MapTypeCountersDomainToApi(s.Totals),
		ErrorCount: s.ErrorCount,
	}
}

func MapRunSummaryDomainToStore(s domain.RunSummary) store.Run {
	return store.Run{
		ID:            s.ID,
		Kind:          string(s.Kind),
		Status:        string(s.Status),
		Mode:          string(s.Mode),
		StartedAt:     s.StartedAt,
		FinishedAt:    s.FinishedAt,
		Scanned:       s.Totals.Scanned,
		NonCompliant:  s.Totals.NonCompliant,
		Deleted:       s.Totals.Deleted,
		InGracePeriod: s.Totals.InGracePeriod,
		ErrorCount:    s.ErrorCount,
		Payload:       string(s.Payload),
	}
}

func MapStoreRunToDomain(r store.Run) domain.RunSummary {
	return domain.RunSummary{
		ID:         r.ID,
		Kind:       domain.RunKind(r.Kind),
		Status:     domain.RunStatus(r.Status),
		Mode:       domain.RunMode(r.Mode),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Totals: domain.TypeCounters{
			Scanned:       r.Scanned,
			NonCompliant:  r.NonCompliant,
			Deleted:       r.Deleted,
			InGracePeriod: r.InGracePeriod,
		},
		ErrorCount: r.ErrorCount,
		Payload:    []byte(r.Payload),
	}
}
