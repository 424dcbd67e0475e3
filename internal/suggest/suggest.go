// Package suggest turns raw feature values and a churn probability into an
// ordered list of human-readable retention suggestions. Each schema variant
// has its own fixed rule set; rules are evaluated in declaration order, every
// rule that fires appends its lines, and a subject matching no rule gets a
// single stable-case message. The lists are never empty and never merged
// across variants.
package suggest

import (
	"github.com/insightportal/attrition/internal/schema"
)

// Stable-case messages, one per variant. These exact strings are part of the
// API contract.
const (
	EmployeeStable = "✓ Employee appears stable - maintain engagement"
	CustomerStable = "✓ Customer appears stable - maintain service quality"
)

// Employee retention suggestion lines.
const (
	empImmediate    = "⚠️ Immediate intervention required"
	empOneOnOne     = "Schedule 1-on-1 meeting with manager"
	empCompReview   = "Review compensation and benefits"
	empCheckIn      = "Schedule proactive check-in with manager"
	empSatisfaction = "Address job satisfaction concerns"
	empRoleChange   = "Consider role adjustment or new projects"
	empHighPerf     = "High performer at risk - prioritize retention"
	empCareer       = "Discuss career growth opportunities"
	empOnboarding   = "New employee - improve onboarding experience"
	empPromotion    = "Consider promotion or career advancement"
)

// Customer retention suggestion lines.
const (
	custLongTerm   = "Offer incentives to switch to a longer-term contract"
	custPricing    = "Review pricing - consider a loyalty discount or plan optimization"
	custOnboarding = "New customer - strengthen onboarding and early engagement"
	custFiber      = "Fiber optic service - proactively confirm service quality"
	custUrgent     = "⚠️ High churn risk - contact customer immediately with a retention offer"
	custCheckIn    = "Schedule a proactive check-in call"
)

// Rule thresholds shared with the risk tiers where they overlap.
const (
	urgentProbability    = 0.7
	proactiveProbability = 0.4
	atRiskProbability    = 0.5
	highChargeThreshold  = 70.0
	lowSatisfaction      = 0.5
	highPerformance      = 4.0
	onboardingTenure     = 12.0
	promotionTenure      = 24.0
)

// rule is one entry of a variant's rule set.
type rule struct {
	name    string
	applies func(rec schema.Record, p float64) bool
	lines   []string
}

// employeeRules is the 12-feature rule set, in fixed priority order.
var employeeRules = []rule{
	{
		name:    "urgent_intervention",
		applies: func(_ schema.Record, p float64) bool { return p >= urgentProbability },
		lines:   []string{empImmediate, empOneOnOne, empCompReview},
	},
	{
		name: "proactive_check_in",
		applies: func(_ schema.Record, p float64) bool {
			return p >= proactiveProbability && p < urgentProbability
		},
		lines: []string{empCheckIn},
	},
	{
		name: "low_satisfaction",
		applies: func(rec schema.Record, _ float64) bool {
			return rec.Number("satisfaction_level", 1) < lowSatisfaction
		},
		lines: []string{empSatisfaction, empRoleChange},
	},
	{
		name: "high_performer_at_risk",
		applies: func(rec schema.Record, p float64) bool {
			return rec.Number("performance_score", 5) >= highPerformance && p >= atRiskProbability
		},
		lines: []string{empHighPerf, empCareer},
	},
	{
		name: "new_employee",
		applies: func(rec schema.Record, _ float64) bool {
			return rec.Number("tenure", 0) < onboardingTenure
		},
		lines: []string{empOnboarding},
	},
	{
		name: "promotion_overdue",
		applies: func(rec schema.Record, _ float64) bool {
			return rec.Number("promotion_last_5years", 0) == 0 && rec.Number("tenure", 0) > promotionTenure
		},
		lines: []string{empPromotion},
	},
}

// customerRules is the 5-feature rule set, in fixed priority order.
var customerRules = []rule{
	{
		name: "month_to_month",
		applies: func(rec schema.Record, _ float64) bool {
			return rec.String("contract") == "Month-to-month"
		},
		lines: []string{custLongTerm},
	},
	{
		name: "high_charges",
		applies: func(rec schema.Record, _ float64) bool {
			return rec.Number("monthly_charges", 0) > highChargeThreshold
		},
		lines: []string{custPricing},
	},
	{
		name: "new_customer",
		applies: func(rec schema.Record, _ float64) bool {
			return rec.Number("tenure", 0) < onboardingTenure
		},
		lines: []string{custOnboarding},
	},
	{
		name: "fiber_optic",
		applies: func(rec schema.Record, _ float64) bool {
			return rec.String("internet_service") == "Fiber optic"
		},
		lines: []string{custFiber},
	},
	{
		name:    "urgent_contact",
		applies: func(_ schema.Record, p float64) bool { return p >= urgentProbability },
		lines:   []string{custUrgent},
	},
	{
		name: "proactive_check_in",
		applies: func(_ schema.Record, p float64) bool {
			return p >= proactiveProbability && p < urgentProbability
		},
		lines: []string{custCheckIn},
	},
}

// Engine evaluates the built-in rule set for a variant, followed by any
// custom playbook rules loaded from configuration.
type Engine struct {
	playbook []PlaybookRule
}

// NewEngine creates an engine with no playbook rules.
func NewEngine() *Engine {
	return &Engine{}
}

// Suggest returns the ordered, non-empty suggestion list for one scored
// subject.
func (e *Engine) Suggest(variant schema.Variant, rec schema.Record, probability float64) []string {
	var rules []rule
	var stable string
	switch variant {
	case schema.Employee:
		rules, stable = employeeRules, EmployeeStable
	default:
		rules, stable = customerRules, CustomerStable
	}

	var out []string
	for _, r := range rules {
		if r.applies(rec, probability) {
			out = append(out, r.lines...)
		}
	}
	out = append(out, e.evalPlaybook(variant, rec, probability)...)

	if len(out) == 0 {
		return []string{stable}
	}
	return out
}
