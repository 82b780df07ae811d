package metrics

import (
	"time"

	"github.com/de-tools/tagwarden/pkg/models/domain"
)

var costMetricNames = map[domain.CostDimension]string{
	domain.CostDimensionSquad:      "CostBySquad",
	domain.CostDimensionCostCenter: "CostByCostCenter",
	domain.CostDimensionService:    "TopCostResources",
}

type pointBuilder struct {
	prefix string
	ts     time.Time
}

func (b pointBuilder) point(namespace, name string, value float64, unit domain.MetricUnit, dims ...domain.MetricDimension) domain.MetricPoint {
	return domain.MetricPoint{
		Namespace:  b.prefix + namespace,
		Name:       name,
		Value:      value,
		Unit:       unit,
		Dimensions: dims,
		Timestamp:  b.ts,
	}
}

func dim(name, value string) domain.MetricDimension {
	return domain.MetricDimension{Name: name, Value: value}
}

// Points lists every metric point for a report, in publish order
func Points(prefix string, r *domain.MetricsReport) []domain.MetricPoint {
	b := pointBuilder{prefix: prefix, ts: r.CollectedAt}
	c := r.Compliance

	points := []domain.MetricPoint{
		b.point(NamespaceTagCompliance, "CompliancePercentage", c.Percentage, domain.MetricUnitPercent, dim("Scope", "Global")),
		b.point(NamespaceTagCompliance, "TotalResources", float64(c.Total), domain.MetricUnitCount),
		b.point(NamespaceTagCompliance, "CompliantResources", float64(c.Compliant), domain.MetricUnitCount),
		b.point(NamespaceTagCompliance, "NonCompliantResources", float64(c.NonCompliant), domain.MetricUnitCount),
	}

	for _, res := range r.NonCompliant {
		points = append(points, b.point(NamespaceTagCompliance, "NonCompliantResources", 1, domain.MetricUnitCount,
			dim("ResourceType", res.Type.String()),
			dim("ResourceId", res.ID),
		))
	}

	for _, rt := range domain.ResourceTypes {
		points = append(points, b.point(NamespaceResourceCount, "ResourcesByType", float64(r.Counts[rt]), domain.MetricUnitCount,
			dim("ResourceType", rt.String()),
		))
	}

	points = append(points, b.point(NamespaceAutoShutdown, "EstimatedSavings", r.EstimatedSavings, domain.MetricUnitNone,
		dim("Period", "Monthly"),
	))

	for _, rollup := range r.Rollups {
		name := costMetricNames[rollup.Dimension]
		for _, e := range rollup.Entries {
			points = append(points, b.point(NamespaceCostExplorer, name, e.Cost, domain.MetricUnitNone,
				dim(string(rollup.Dimension), e.DimensionValue),
			))
		}
	}

	return points
}
