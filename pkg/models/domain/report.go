package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// TypeCounters holds the per resource type tallies of a run
type TypeCounters struct {
	Scanned       int
	NonCompliant  int
	Deleted       int
	InGracePeriod int
}

func (c TypeCounters) Add(o TypeCounters) TypeCounters {
	return TypeCounters{
		Scanned:       c.Scanned + o.Scanned,
		NonCompliant:  c.NonCompliant + o.NonCompliant,
		Deleted:       c.Deleted + o.Deleted,
		InGracePeriod: c.InGracePeriod + o.InGracePeriod,
	}
}

type ErrorKind string

const (
	ErrorKindScan      ErrorKind = "scan"
	ErrorKindTagLookup ErrorKind = "tag_lookup"
	ErrorKindDeletion  ErrorKind = "deletion"
)

// RunError is one failure recorded during a run, never fatal to it
type RunError struct {
	Type       ResourceType
	ResourceID string // empty for scan failures
	Kind       ErrorKind
	Message    string
}

func (e RunError) String() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Type, e.ResourceID, e.Message)
}

// ScanReport accumulates counters and errors. A zero value is ready to use.
type ScanReport struct {
	Counters map[ResourceType]TypeCounters
	Errors   []RunError
}

func NewScanReport() *ScanReport {
	return &ScanReport{Counters: make(map[ResourceType]TypeCounters)}
}

func (r *ScanReport) Update(rt ResourceType, fn func(c *TypeCounters)) {
	if r.Counters == nil {
		r.Counters = make(map[ResourceType]TypeCounters)
	}
	c := r.Counters[rt]
	fn(&c)
	r.Counters[rt] = c
}

func (r *ScanReport) AddError(e RunError) {
	r.Errors = append(r.Errors, e)
}

// Merge adds o into r. Counters are summed per type and errors are concatenated,
// so totals do not depend on the order reports are merged in.
func (r *ScanReport) Merge(o *ScanReport) {
	if o == nil {
		return
	}
	for rt, c := range o.Counters {
		r.Update(rt, func(cur *TypeCounters) {
			*cur = cur.Add(c)
		})
	}
	r.Errors = append(r.Errors, o.Errors...)
}

func (r *ScanReport) For(rt ResourceType) TypeCounters {
	return r.Counters[rt]
}

func (r *ScanReport) Totals() TypeCounters {
	var total TypeCounters
	for _, c := range r.Counters {
		total = total.Add(c)
	}
	return total
}

// SortedErrors orders errors by type, kind, resource and message for stable output
func (r *ScanReport) SortedErrors() []RunError {
	errs := slices.Clone(r.Errors)
	slices.SortStableFunc(errs, func(a, b RunError) int {
		return cmp.Or(
			strings.Compare(string(a.Type), string(b.Type)),
			strings.Compare(string(a.Kind), string(b.Kind)),
			strings.Compare(a.ResourceID, b.ResourceID),
			strings.Compare(a.Message, b.Message),
		)
	})
	return errs
}

// DeletionOutcome is the result of the deletion step for one eligible resource
type DeletionOutcome struct {
	Attempted bool
	Succeeded bool
	Err       error
}
