package api

import "time"

type ComplianceSummary struct {
	Total        int     `json:"total" yaml:"total"`
	Compliant    int     `json:"compliant" yaml:"compliant"`
	NonCompliant int     `json:"non_compliant" yaml:"non_compliant"`
	Percentage   float64 `json:"percentage" yaml:"percentage"`
}

type NonCompliantResource struct {
	ResourceType string   `json:"resource_type" yaml:"resource_type"`
	ResourceID   string   `json:"resource_id" yaml:"resource_id"`
	Missing      []string `json:"missing_tags" yaml:"missing_tags"`
}

type CostEntry struct {
	Value    string  `json:"value" yaml:"value"`
	Cost     float64 `json:"cost" yaml:"cost"`
	Currency string  `json:"currency,omitempty" yaml:"currency,omitempty"`
}

type CostRollup struct {
	Dimension string      `json:"dimension" yaml:"dimension"`
	Entries   []CostEntry `json:"entries" yaml:"entries"`
}

type DateRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

type MetricsReport struct {
	ID               string                 `json:"id" yaml:"id"`
	Region           string                 `json:"region,omitempty" yaml:"region,omitempty"`
	CollectedAt      time.Time              `json:"collected_at" yaml:"collected_at"`
	Compliance       ComplianceSummary      `json:"compliance" yaml:"compliance"`
	Counts           map[string]int         `json:"resource_counts" yaml:"resource_counts"`
	NonCompliant     []NonCompliantResource `json:"non_compliant" yaml:"non_compliant"`
	EstimatedSavings float64                `json:"estimated_monthly_savings" yaml:"estimated_monthly_savings"`
	CostWindow       DateRange              `json:"cost_window" yaml:"cost_window"`
	Rollups          []CostRollup           `json:"cost_rollups" yaml:"cost_rollups"`
	UnavailableCosts []string               `json:"unavailable_cost_dimensions,omitempty" yaml:"unavailable_cost_dimensions,omitempty"`
	Errors           []RunError             `json:"errors" yaml:"errors"`
	PublishedPoints  int                    `json:"published_points" yaml:"published_points"`
	FailedPublishes  int                    `json:"failed_publishes" yaml:"failed_publishes"`
}
