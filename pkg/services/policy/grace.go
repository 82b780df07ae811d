package policy

import "time"

const DefaultGracePeriod = 24 * time.Hour

// Gate protects non-compliant resources younger than Period
type Gate struct {
	Period time.Duration
}

func NewGate(period time.Duration) Gate {
	return Gate{Period: period}
}

// Protected reports whether now-createdAt is strictly less than the grace period.
// An unknown creation time never protects a resource.
func (g Gate) Protected(createdAt *time.Time, now time.Time) bool {
	if createdAt == nil || createdAt.IsZero() {
		return false
	}
	return now.Sub(*createdAt) < g.Period
}
