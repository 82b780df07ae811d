package metrics

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/de-tools/tagwarden/pkg/models/domain"
)

const TopServices = 10

// CostWindow covers the first of the month up to today. On the first day of the
// month that window is empty, so the trailing 30 days are used instead.
func CostWindow(now time.Time) domain.DateRange {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	window := domain.DateRange{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		End:   today,
	}
	if window.Empty() {
		window.Start = today.AddDate(0, 0, -30)
	}
	return window
}

// Rollup cleans provider entries: tag key prefixes are stripped, empty values and
// non-positive costs dropped, and the Service dimension is ranked and cut to the top 10.
func Rollup(dimension domain.CostDimension, entries []domain.CostEntry) domain.CostRollup {
	out := make([]domain.CostEntry, 0, len(entries))
	for _, e := range entries {
		if dimension.IsTag() {
			e.DimensionValue = strings.TrimPrefix(e.DimensionValue, string(dimension)+"$")
		}
		if e.DimensionValue == "" || e.Cost <= 0 {
			continue
		}
		out = append(out, e)
	}

	if dimension == domain.CostDimensionService {
		slices.SortStableFunc(out, func(a, b domain.CostEntry) int {
			return cmp.Compare(b.Cost, a.Cost)
		})
		if len(out) > TopServices {
			out = out[:TopServices]
		}
	}

	return domain.CostRollup{Dimension: dimension, Entries: out}
}
