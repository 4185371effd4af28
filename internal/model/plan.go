package model

// Plan is a subscription tier determining the daily tool quota.
type Plan string

// Known plans.
const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// planQuotas maps each plan to its daily tool-invocation quota.
var planQuotas = map[Plan]int{
	PlanFree:     5,
	PlanPro:      500,
	PlanBusiness: 2000,
}

// DailyQuota returns the number of tool invocations allowed per
// calendar day. Unknown or empty plans fall back to the free quota.
func (p Plan) DailyQuota() int {
	if quota, ok := planQuotas[p]; ok {
		return quota
	}
	return planQuotas[PlanFree]
}

// IsValid reports whether p is a known plan.
func (p Plan) IsValid() bool {
	_, ok := planQuotas[p]
	return ok
}

// IsPaid reports whether p is a paid tier.
func (p Plan) IsPaid() bool {
	return p == PlanPro || p == PlanBusiness
}
