package domain

import "time"

type MetricUnit string

const (
	MetricUnitPercent MetricUnit = "Percent"
	MetricUnitCount   MetricUnit = "Count"
	MetricUnitNone    MetricUnit = "None"
)

type MetricDimension struct {
	Name  string
	Value string
}

// MetricPoint is a single value published to the metrics sink
type MetricPoint struct {
	Namespace  string
	Name       string
	Value      float64
	Unit       MetricUnit
	Dimensions []MetricDimension
	Timestamp  time.Time
}

type ComplianceSummary struct {
	Total        int
	Compliant    int
	NonCompliant int
	Percentage   float64
}

type NonCompliantResource struct {
	Type    ResourceType
	ID      string
	Missing []string
}

// MetricsReport is the outcome of one metrics collection run
type MetricsReport struct {
	ID               string
	Region           string
	CollectedAt      time.Time
	Compliance       ComplianceSummary
	Counts           map[ResourceType]int
	NonCompliant     []NonCompliantResource
	EstimatedSavings float64
	CostWindow       DateRange
	Rollups          []CostRollup
	UnavailableCosts []CostDimension
	Errors           []RunError
	PublishedPoints  int
	FailedPublishes  int
}
