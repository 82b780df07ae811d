package api

import "time"

type RunSummary struct {
	ID         string       `json:"id" yaml:"id"`
	Kind       string       `json:"kind" yaml:"kind"`
	Status     string       `json:"status" yaml:"status"`
	Mode       string       `json:"mode" yaml:"mode"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Totals     TypeCounters `json:"totals" yaml:"totals"`
	ErrorCount int          `json:"error_count" yaml:"error_count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
