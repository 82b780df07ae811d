package adapters

import (
	"github.com/de-tools/tagwarden/pkg/models/api"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

func MapTypeCountersDomainToApi(c domain.TypeCounters) api.TypeCounters {
	return api.TypeCounters{
		Scanned:       c.Scanned,
		NonCompliant:  c.NonCompliant,
		Deleted:       c.Deleted,
		InGracePeriod: c.InGracePeriod,
	}
}

func MapRunErrorsDomainToApi(errs []domain.RunError) []api.RunError {
	out := make([]api.RunError, 0, len(errs))
	for _, e := range errs {
		out = append(out, api.RunError{
			ResourceType: e.Type.String(),
			ResourceID:   e.ResourceID,
			Kind:         string(e.Kind),
			Message:      e.Message,
		})
	}
	return out
}

// MapCleanupReportDomainToApi lists a counters entry for every resource type, zero included
func MapCleanupReportDomainToApi(run *domain.RunReport) api.CleanupReport {
	report := run.Report
	if report == nil {
		report = domain.NewScanReport()
	}

	counters := make(map[string]api.TypeCounters, len(domain.ResourceTypes))
	for _, rt := range domain.ResourceTypes {
		counters[rt.String()] = MapTypeCountersDomainToApi(report.For(rt))
	}

	return api.CleanupReport{
		ID:         run.ID,
		Mode:       string(run.Mode),
		Region:     run.Region,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Counters:   counters,
		Totals:     MapTypeCountersDomainToApi(report.Totals()),
		Errors:     MapRunErrorsDomainToApi(report.SortedErrors()),
	}
}
