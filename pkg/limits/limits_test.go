package limits

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tokenscope-ai/tokenscope/pkg/models"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monitor_config.json")
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return m, path
}

func tokenSummary(provider string, tokens int64) models.UsageSummary {
	return models.UsageSummary{Provider: provider, TotalTokens: tokens}
}

func TestLoadSeedsDefaults(t *testing.T) {
	m, path := newTestManager(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}

	thresholds := m.Thresholds()
	if thresholds.WarnAtPercentage != 80 || thresholds.CriticalAtPercentage != 95 {
		t.Errorf("unexpected default thresholds: %+v", thresholds)
	}

	providers := m.Providers()
	if len(providers) != 3 {
		t.Fatalf("expected 3 default providers, got %v", providers)
	}
}

func TestSetLimitPersists(t *testing.T) {
	m, path := newTestManager(t)

	if err := m.SetLimit("openai", "prepaid_credits", 100); err != nil {
		t.Fatal(err)
	}

	// Reload from disk and evaluate against the new limit.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	status, _ := reloaded.Evaluate("openai", models.UsageSummary{TotalCostUSD: 50})
	if status == nil {
		t.Fatal("expected a status entry")
	}
	if status.LimitType != "prepaid_credits" || status.Limit != 100 {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestEvaluateThresholds(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.SetLimit("anthropic", "max_plan_tokens", 100); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		tokens int64
		want   string
		alerts int
	}{
		{79, models.StatusOK, 0},
		{80, models.StatusWarning, 1},
		{94, models.StatusWarning, 1},
		{95, models.StatusCritical, 1},
		{100, models.StatusCritical, 1},
	}
	for _, tc := range cases {
		status, alerts := m.Evaluate("anthropic", tokenSummary("anthropic", tc.tokens))
		if status == nil {
			t.Fatalf("tokens=%d: expected status", tc.tokens)
		}
		if status.Status != tc.want {
			t.Errorf("tokens=%d: expected %s, got %s", tc.tokens, tc.want, status.Status)
		}
		if len(alerts) != tc.alerts {
			t.Errorf("tokens=%d: expected %d alerts, got %v", tc.tokens, tc.alerts, alerts)
		}
	}
}

func TestEvaluateZeroLimitProducesNoStatus(t *testing.T) {
	m, _ := newTestManager(t)

	// openai defaults to zero-valued limits: no status, not 100% usage.
	status, alerts := m.Evaluate("openai", tokenSummary("openai", 0))
	if status != nil {
		t.Errorf("expected no status for zero limits, got %+v", status)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %v", alerts)
	}
}

func TestEvaluateUnknownProvider(t *testing.T) {
	m, _ := newTestManager(t)

	status, alerts := m.Evaluate("voyage", tokenSummary("voyage", 1_000_000))
	if status != nil || len(alerts) != 0 {
		t.Errorf("expected nothing for unconfigured provider, got %+v %v", status, alerts)
	}
}

func TestEvaluateCurrencyLimit(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.SetLimit("openai", "prepaid_credits", 10); err != nil {
		t.Fatal(err)
	}

	// $9 of $10 is 90%: warning.
	status, alerts := m.Evaluate("openai", models.UsageSummary{Provider: "openai", TotalCostUSD: 9})
	if status == nil {
		t.Fatal("expected a status entry")
	}
	if status.Status != models.StatusWarning {
		t.Errorf("expected warning, got %s", status.Status)
	}
	if status.PercentUsed != 90 {
		t.Errorf("expected 90%%, got %v", status.PercentUsed)
	}
	if len(alerts) != 1 {
		t.Errorf("expected 1 alert, got %v", alerts)
	}
}

func TestEvaluatePicksMostBindingLimit(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.SetLimit("gemini", "free_tier_tokens", 100); err != nil {
		t.Fatal(err)
	}
	if err := m.SetLimit("gemini", "paid_tier_tokens", 1000); err != nil {
		t.Fatal(err)
	}

	status, _ := m.Evaluate("gemini", tokenSummary("gemini", 96))
	if status == nil {
		t.Fatal("expected a status entry")
	}
	if status.LimitType != "free_tier_tokens" {
		t.Errorf("expected free_tier_tokens to bind, got %s", status.LimitType)
	}
	if status.Status != models.StatusCritical {
		t.Errorf("expected critical, got %s", status.Status)
	}
}

func TestLoadRegeneratesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Providers()) != 3 {
		t.Errorf("expected regenerated defaults, got %v", m.Providers())
	}
}
