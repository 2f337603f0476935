package rates

import "time"

// Payment plan identifiers shared with the sales module.
const (
	PlanDaily   = "daily"
	PlanWeekly  = "weekly"
	PlanMonthly = "monthly"
)

// Plans lists the supported payment plans in display order.
func Plans() []string {
	return []string{PlanDaily, PlanWeekly, PlanMonthly}
}

// ValidPlan reports whether plan names a supported payment frequency.
func ValidPlan(plan string) bool {
	switch plan {
	case PlanDaily, PlanWeekly, PlanMonthly:
		return true
	}
	return false
}

// RateSet holds the three equivalent expressions of one interest rate,
// each as a percentage: monthly periodic (TEM), annual nominal (TNA) and
// annual effective (TEA).
type RateSet struct {
	TEM float64 `json:"tem"`
	TNA float64 `json:"tna"`
	TEA float64 `json:"tea"`
}

// PlanRates is the stored default rate set for one payment plan.
type PlanRates struct {
	ID        int64     `json:"id"`
	Plan      string    `json:"plan"`
	Rates     RateSet   `json:"rates"`
	UpdatedAt time.Time `json:"updated_at"`
}
