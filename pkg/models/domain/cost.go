package domain

import "time"

type CostDimension string

const (
	CostDimensionSquad      CostDimension = "Squad"
	CostDimensionCostCenter CostDimension = "CostCenter"
	CostDimensionService    CostDimension = "Service"
)

// CostDimensions are queried in this order
var CostDimensions = []CostDimension{
	CostDimensionSquad,
	CostDimensionCostCenter,
	CostDimensionService,
}

// IsTag reports whether the dimension is a cost allocation tag rather than a provider dimension
func (d CostDimension) IsTag() bool {
	return d != CostDimensionService
}

type CostEntry struct {
	DimensionValue string  // Data, CC-123, Amazon Elastic Compute Cloud - Compute
	Cost           float64 // 42.17
	Currency       string  // USD
}

// DateRange is a [Start, End) window at day granularity
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Empty() bool {
	return !r.End.After(r.Start)
}

type CostRollup struct {
	Dimension CostDimension
	Entries   []CostEntry
}
