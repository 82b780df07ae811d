package domain

import "time"

type RunKind string

const (
	RunKindCleanup RunKind = "cleanup"
	RunKindMetrics RunKind = "metrics"
)

type RunStatus string

const (
	RunStatusFinished RunStatus = "finished"
	// RunStatusPartial means the run completed but recorded errors
	RunStatusPartial RunStatus = "partial"
)

func StatusFor(errorCount int) RunStatus {
	if errorCount > 0 {
		return RunStatusPartial
	}
	return RunStatusFinished
}

// RunReport is the outcome of one governance run
type RunReport struct {
	ID         string
	Mode       RunMode
	Region     string
	StartedAt  time.Time
	FinishedAt time.Time
	Report     *ScanReport
}

func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunSummary is what the history store keeps about any run
type RunSummary struct {
	ID         string
	Kind       RunKind
	Status     RunStatus
	Mode       RunMode
	StartedAt  time.Time
	FinishedAt time.Time
	Totals     TypeCounters
	ErrorCount int
	Payload    []byte // JSON encoded report
}
