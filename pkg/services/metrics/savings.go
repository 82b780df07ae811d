package metrics

import (
	"slices"
	"strings"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/services/policy"
)

const (
	AutoShutdownTag = "AutoShutdown"
	// shutdownHoursPerMonth assumes 12 hours off per day over 30 days
	shutdownHoursPerMonth = 12 * 30
)

// HourlyPrices are on-demand USD prices per size class
var HourlyPrices = map[string]float64{
	"t3.micro":    0.0104,
	"t3.small":    0.0208,
	"t3.medium":   0.0416,
	"db.t3.micro": 0.018,
	"db.t3.small": 0.036,
}

var defaultSizeClass = map[domain.ResourceType]string{
	domain.ResourceTypeEC2: "t3.micro",
	domain.ResourceTypeRDS: "db.t3.micro",
}

// AutoShutdownEnabled reports whether the AutoShutdown tag is set to true, in any case
func AutoShutdownEnabled(tags domain.Tags) bool {
	v, ok := policy.TagValue(tags, AutoShutdownTag)
	return ok && strings.EqualFold(strings.TrimSpace(v), "true")
}

// HourlyPrice resolves the price of a size class, falling back to the type default and then to the cheapest known price
func HourlyPrice(rt domain.ResourceType, sizeClass string) float64 {
	if price, ok := HourlyPrices[sizeClass]; ok {
		return price
	}
	if class, ok := defaultSizeClass[rt]; ok {
		return HourlyPrices[class]
	}
	return slices.Min(pricesOf(HourlyPrices))
}

// EstimateMonthlySavings sums the monthly savings of every AutoShutdown resource, rounded to cents
func EstimateMonthlySavings(records []domain.ResourceRecord) float64 {
	savings := 0.0
	for _, r := range records {
		if !AutoShutdownEnabled(r.Tags) {
			continue
		}
		savings += HourlyPrice(r.Type, r.SizeClass) * shutdownHoursPerMonth
	}
	return roundTo(savings, 2)
}

func pricesOf(m map[string]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
