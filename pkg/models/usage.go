package models

import "time"

// ServiceType is the category of metered call.
type ServiceType string

const (
	ServiceLLM       ServiceType = "llm"
	ServiceEmbedding ServiceType = "embedding"
	ServiceReranking ServiceType = "reranking"
)

// TokenCounts is a normalized pair of token counts extracted from a
// provider response.
type TokenCounts struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// UsageRecord is one logged metering event for a single provider call.
// Records are immutable once written; TotalTokens is always computed as
// InputTokens + OutputTokens, never supplied independently.
type UsageRecord struct {
	ID           int64          `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Provider     string         `json:"provider"`
	ServiceType  ServiceType    `json:"service_type"`
	Model        string         `json:"model"`
	Operation    string         `json:"operation"`
	InputTokens  int64          `json:"input_tokens"`
	OutputTokens int64          `json:"output_tokens"`
	TotalTokens  int64          `json:"total_tokens"`
	APIKeyID     string         `json:"api_key_id"`
	CostUSD      float64        `json:"cost_usd"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Error        bool           `json:"error"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// ServiceTypeUsage aggregates requests and tokens for one service type.
type ServiceTypeUsage struct {
	ServiceType ServiceType `json:"service_type"`
	Requests    int64       `json:"requests"`
	Tokens      int64       `json:"tokens"`
}

// ModelUsage aggregates requests, tokens, and cost for one model.
type ModelUsage struct {
	Model    string  `json:"model"`
	Requests int64   `json:"requests"`
	Tokens   int64   `json:"tokens"`
	CostUSD  float64 `json:"cost_usd"`
}

// UsageSummary aggregates a provider's usage over a trailing window.
type UsageSummary struct {
	Provider          string             `json:"provider"`
	PeriodDays        int                `json:"period_days"`
	TotalRequests     int64              `json:"total_requests"`
	TotalInputTokens  int64              `json:"total_input_tokens"`
	TotalOutputTokens int64              `json:"total_output_tokens"`
	TotalTokens       int64              `json:"total_tokens"`
	TotalCostUSD      float64            `json:"total_cost_usd"`
	ByServiceType     []ServiceTypeUsage `json:"by_service_type,omitempty"`
	ByModel           []ModelUsage       `json:"by_model,omitempty"`
}

// ProviderServiceUsage is one row of the cross-provider report breakdown,
// grouped by provider and service type.
type ProviderServiceUsage struct {
	Provider    string      `json:"provider"`
	ServiceType ServiceType `json:"service_type"`
	Requests    int64       `json:"requests"`
	Tokens      int64       `json:"tokens"`
	CostUSD     float64     `json:"cost_usd"`
}

// ReportPeriod is the explicit [start, end] range a report covers.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReportTotals holds overall statistics across all providers in a window.
type ReportTotals struct {
	ProviderCount int64   `json:"provider_count"`
	APIKeyCount   int64   `json:"api_key_count"`
	TotalRequests int64   `json:"total_requests"`
	TotalTokens   int64   `json:"total_tokens"`
	TotalCostUSD  float64 `json:"total_cost_usd"`
	ErrorCount    int64   `json:"error_count"`
}

// ComprehensiveReport is a cross-provider usage report over an explicit range.
type ComprehensiveReport struct {
	Period             ReportPeriod                  `json:"report_period"`
	Summary            ReportTotals                  `json:"summary"`
	ByProvider         []ProviderServiceUsage        `json:"by_provider,omitempty"`
	SubscriptionStatus map[string]SubscriptionStatus `json:"subscription_status,omitempty"`
}
