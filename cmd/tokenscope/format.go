package main

import (
	"fmt"
	"strings"

	"github.com/tokenscope-ai/tokenscope/pkg/models"
)

// Costs are rounded to cents at presentation time only; aggregation keeps
// full precision.

func formatProviderSummary(s models.UsageSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage Summary for %s (last %d days)\n", s.Provider, s.PeriodDays)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Total Requests: %d\n", s.TotalRequests)
	fmt.Fprintf(&b, "Total Tokens:   %d\n", s.TotalTokens)
	fmt.Fprintf(&b, "  - Input:  %d\n", s.TotalInputTokens)
	fmt.Fprintf(&b, "  - Output: %d\n", s.TotalOutputTokens)
	fmt.Fprintf(&b, "Total Cost:     $%.2f\n", s.TotalCostUSD)

	if len(s.ByServiceType) > 0 {
		b.WriteString("\nBy Service Type:\n")
		for _, svc := range s.ByServiceType {
			fmt.Fprintf(&b, "  %-10s %8d requests %12d tokens\n", svc.ServiceType, svc.Requests, svc.Tokens)
		}
	}

	if len(s.ByModel) > 0 {
		b.WriteString("\nBy Model:\n")
		fmt.Fprintf(&b, "  %-32s %8s %12s %10s\n", "MODEL", "REQUESTS", "TOKENS", "COST")
		b.WriteString("  " + strings.Repeat("-", 64) + "\n")
		for _, mu := range s.ByModel {
			fmt.Fprintf(&b, "  %-32s %8d %12d $%9.2f\n", mu.Model, mu.Requests, mu.Tokens, mu.CostUSD)
		}
	}
	return b.String()
}

func formatReport(r models.ComprehensiveReport) string {
	var b strings.Builder
	b.WriteString("Comprehensive Usage Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Period: %s to %s\n",
		r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Providers:      %d\n", r.Summary.ProviderCount)
	fmt.Fprintf(&b, "API Keys:       %d\n", r.Summary.APIKeyCount)
	fmt.Fprintf(&b, "Total Requests: %d\n", r.Summary.TotalRequests)
	fmt.Fprintf(&b, "Total Tokens:   %d\n", r.Summary.TotalTokens)
	fmt.Fprintf(&b, "Total Cost:     $%.2f\n", r.Summary.TotalCostUSD)
	fmt.Fprintf(&b, "Errors:         %d\n", r.Summary.ErrorCount)

	if len(r.ByProvider) > 0 {
		b.WriteString("\nBy Provider:\n")
		fmt.Fprintf(&b, "  %-15s %-10s %8s %12s %10s\n", "PROVIDER", "SERVICE", "REQUESTS", "TOKENS", "COST")
		b.WriteString("  " + strings.Repeat("-", 60) + "\n")
		for _, p := range r.ByProvider {
			fmt.Fprintf(&b, "  %-15s %-10s %8d %12d $%9.2f\n",
				p.Provider, p.ServiceType, p.Requests, p.Tokens, p.CostUSD)
		}
	}
	return b.String()
}
