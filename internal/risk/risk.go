// Package risk maps a churn probability to one of three ordered risk tiers.
// Thresholds are fixed constants shared by every schema variant; the exact
// boundary values belong to the higher-severity tier.
package risk

// Tier is an ordered attrition risk level.
type Tier int

const (
	Low Tier = iota
	Medium
	High
)

// Probability thresholds. A probability equal to a threshold maps to the
// higher-severity tier (>=, not >).
const (
	HighThreshold   = 0.7
	MediumThreshold = 0.4
)

// Classify returns the risk tier for a churn probability.
func Classify(probability float64) Tier {
	switch {
	case probability >= HighThreshold:
		return High
	case probability >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// String returns the tier label used in API responses and the roster CSV.
func (t Tier) String() string {
	switch t {
	case High:
		return "High Risk"
	case Medium:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}
