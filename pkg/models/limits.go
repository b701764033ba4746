package models

// Subscription status values, ordered from least to most severe.
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// AlertThresholds are the percentage cutoffs for warning and critical alerts.
type AlertThresholds struct {
	WarnAtPercentage     float64 `json:"warn_at_percentage"`
	CriticalAtPercentage float64 `json:"critical_at_percentage"`
}

// SubscriptionStatus compares a provider's current usage against its most
// binding configured limit.
type SubscriptionStatus struct {
	LimitType   string  `json:"limit_type"`
	Limit       float64 `json:"limit"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
	PercentUsed float64 `json:"percentage_used"`
	Status      string  `json:"status"`
}
