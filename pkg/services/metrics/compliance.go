package metrics

import "math"

// CompliancePercentage is compliant/total*100 rounded to one decimal; an empty fleet is fully compliant
func CompliancePercentage(total, compliant int) float64 {
	if total == 0 {
		return 100.0
	}
	return roundTo(float64(compliant)/float64(total)*100, 1)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
