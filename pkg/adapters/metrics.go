package adapters

import (
	"github.com/de-tools/tagwarden/pkg/models/api"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

func MapMetricsReportDomainToApi(r *domain.MetricsReport) api.MetricsReport {
	counts := make(map[string]int, len(domain.ResourceTypes))
	for _, rt := range domain.ResourceTypes {
		counts[rt.String()] = r.Counts[rt]
	}

	nonCompliant := make([]api.NonCompliantResource, 0, len(r.NonCompliant))
	for _, res := range r.NonCompliant {
		nonCompliant = append(nonCompliant, api.NonCompliantResource{
			ResourceType: res.Type.String(),
			ResourceID:   res.ID,
			Missing:      res.Missing,
		})
	}

	rollups := make([]api.CostRollup, 0, len(r.Rollups))
	for _, rollup := range r.Rollups {
		rollups = append(rollups, MapCostRollupDomainToApi(rollup))
	}

	var unavailable []string
	for _, d := range r.UnavailableCosts {
		unavailable = append(unavailable, string(d))
	}

	return api.MetricsReport{
		ID:          r.ID,
		Region:      r.Region,
		CollectedAt: r.CollectedAt,
		Compliance: api.ComplianceSummary{
			Total:        r.Compliance.Total,
			Compliant:    r.Compliance.Compliant,
			NonCompliant: r.Compliance.NonCompliant,
			Percentage:   r.Compliance.Percentage,
		},
		Counts:           counts,
		NonCompliant:     nonCompliant,
		EstimatedSavings: r.EstimatedSavings,
		CostWindow: api.DateRange{
			Start: r.CostWindow.Start,
			End:   r.CostWindow.End,
		},
		Rollups:          rollups,
		UnavailableCosts: unavailable,
		Errors:           MapRunErrorsDomainToApi(r.Errors),
		PublishedPoints:  r.PublishedPoints,
		FailedPublishes:  r.FailedPublishes,
	}
}

func MapCostRollupDomainToApi(r domain.CostRollup) api.CostRollup {
	entries := make([]api.CostEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, api.CostEntry{
			Value:    e.DimensionValue,
			Cost:     e.Cost,
			Currency: e.Currency,
		})
	}
	return api.CostRollup{
		Dimension: string(r.Dimension),
		Entries:   entries,
	}
}
