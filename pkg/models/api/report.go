package api

import "time"

type TypeCounters struct {
	Scanned       int `json:"scanned" yaml:"scanned"`
	NonCompliant  int `json:"non_compliant" yaml:"non_compliant"`
	Deleted       int `json:"deleted" yaml:"deleted"`
	InGracePeriod int `json:"in_grace_period" yaml:"in_grace_period"`
}

type RunError struct {
	ResourceType string `json:"resource_type" yaml:"resource_type"`
	ResourceID   string `json:"resource_id,omitempty" yaml:"resource_id,omitempty"`
	Kind         string `json:"kind" yaml:"kind"`
	Message      string `json:"message" yaml:"message"`
}

type CleanupReport struct {
	ID         string                  `json:"id" yaml:"id"`
	Mode       string                  `json:"mode" yaml:"mode"`
	Region     string                  `json:"region,omitempty" yaml:"region,omitempty"`
	StartedAt  time.Time               `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time               `json:"finished_at" yaml:"finished_at"`
	Counters   map[string]TypeCounters `json:"counters" yaml:"counters"`
	Totals     TypeCounters            `json:"totals" yaml:"totals"`
	Errors     []RunError              `json:"errors" yaml:"errors"`
}
