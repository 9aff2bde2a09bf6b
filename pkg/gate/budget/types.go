package budget

import "time"

// Config contains the budget ceilings in USD. A zero ceiling means the
// period is not enforced.
type Config struct {
	// DailyLimit caps one caller's spend per calendar day.
	DailyLimit float64

	// MonthlyLimit caps one caller's spend per calendar month.
	MonthlyLimit float64

	// TenantDailyLimit caps the combined spend of all callers in one
	// tenant (household) per calendar day.
	TenantDailyLimit float64
}

// Period identifies a budget accounting period.
type Period string

const (
	PeriodDay       Period = "day"
	PeriodMonth     Period = "month"
	PeriodTenantDay Period = "tenant_day"
)

// Decision is the outcome of an affordability check.
type Decision struct {
	// Allowed indicates whether the estimated spend fits all ceilings.
	Allowed bool

	// Reason explains the rejection (if Allowed=false), naming the first
	// ceiling breached.
	Reason string

	// Period is the accounting period whose ceiling was breached.
	Period Period
}

// PeriodUsage describes one accounting period of a caller's ledger.
type PeriodUsage struct {
	// Used is the cumulative cost in USD for the period.
	Used float64 `json:"used"`

	// Limit is the configured ceiling (0 = unlimited).
	Limit float64 `json:"limit"`

	// Remaining is Limit - Used, floored at zero.
	Remaining float64 `json:"remaining"`

	// Tokens is the cumulative actual token count for the period.
	Tokens int `json:"tokens"`

	// Requests is the number of recorded external calls in the period.
	Requests int `json:"requests"`
}

// Usage is the introspection view of one caller's ledger.
type Usage struct {
	Daily   PeriodUsage `json:"daily"`
	Monthly PeriodUsage `json:"monthly"`

	// AverageCost is the mean cost per recorded call this month.
	AverageCost float64 `json:"average_cost"`

	// AsOf is when the snapshot was taken.
	AsOf time.Time `json:"as_of"`
}
