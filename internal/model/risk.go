package model

// RiskLevel is the tier reported for a location lookup.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Confidence attached to each tier.
const (
	ConfidenceLow      = 0.75
	ConfidenceHigh     = 0.85
	ConfidenceCritical = 0.92
)

// criticalFatalities is the fatal-accident count above which a location is CRITICAL.
const criticalFatalities = 5

// ClassifyRisk returns the tier and confidence for a location.
// Rules, first match wins:
//   - CRITICAL: more than 5 fatal accidents
//   - HIGH: accident-prone
//   - LOW: everything else
func ClassifyRisk(accidentProne bool, fatalAccidents int) (RiskLevel, float64) {
	switch {
	case fatalAccidents > criticalFatalities:
		return RiskCritical, ConfidenceCritical
	case accidentProne:
		return RiskHigh, ConfidenceHigh
	default:
		return RiskLow, ConfidenceLow
	}
}

// ParseRiskLevel maps a query value onto a known tier. Unknown values are
// returned as-is with ok=false.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch lvl := RiskLevel(s); lvl {
	case RiskLow, RiskHigh, RiskCritical:
		return lvl, true
	default:
		return lvl, false
	}
}
