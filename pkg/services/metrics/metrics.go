package metrics

import (
	"context"

	"github.com/de-tools/tagwarden/pkg/models/domain"
)

const (
	NamespaceTagCompliance = "TagCompliance"
	NamespaceResourceCount = "ResourceCount"
	NamespaceAutoShutdown  = "AutoShutdown"
	NamespaceCostExplorer  = "CostExplorer"
)

// CostProvider returns the spend over window grouped by one dimension.
// It returns an error wrapping domain.ErrDimensionUnavailable when the
// dimension cannot be grouped on, e.g. an inactive cost allocation tag.
type CostProvider interface {
	GetCostAndUsage(ctx context.Context, window domain.DateRange, dimension domain.CostDimension) ([]domain.CostEntry, error)
}

// Sink publishes one metric point per call
type Sink interface {
	PutMetric(ctx context.Context, point domain.MetricPoint) error
}

type HistoryStore interface {
	Add(ctx context.Context, summary domain.RunSummary) error
}
