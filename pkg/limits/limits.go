// Package limits holds per-provider subscription limits and classifies
// current usage against them.
package limits

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/tokenscope-ai/tokenscope/pkg/models"
)

// Config is the on-disk limits configuration.
type Config struct {
	SubscriptionLimits map[string]map[string]float64 `json:"subscription_limits"`
	Alerts             models.AlertThresholds        `json:"alerts"`
}

// currencyLimitTypes are limits denominated in USD; everything else is
// compared against token counts.
var currencyLimitTypes = map[string]bool{
	"prepaid_credits": true,
}

// defaultConfig seeds the limits file on first run.
func defaultConfig() Config {
	return Config{
		SubscriptionLimits: map[string]map[string]float64{
			"anthropic": {"max_plan_tokens": 5_000_000},
			"openai":    {"prepaid_credits": 0, "monthly_limit": 0},
			"gemini":    {"free_tier_tokens": 1_000_000, "paid_tier_tokens": 0},
		},
		Alerts: models.AlertThresholds{
			WarnAtPercentage:     80,
			CriticalAtPercentage: 95,
		},
	}
}

// Manager loads, persists, and evaluates subscription limits. Safe for
// concurrent use.
type Manager struct {
	path string

	mu  sync.RWMutex
	cfg Config
}

// Load reads the limits file at path, seeding defaults when the file is
// missing or malformed. Configuration problems are never fatal.
func Load(path string) (*Manager, error) {
	m := &Manager{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		m.cfg = defaultConfig()
		if err := m.save(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read limits config: %w", err)
	default:
		if err := json.Unmarshal(data, &m.cfg); err != nil {
			log.Warnf("limits config %s is malformed, regenerating defaults: %v", path, err)
			m.cfg = defaultConfig()
			if err := m.save(); err != nil {
				return nil, err
			}
		}
	}

	if m.cfg.SubscriptionLimits == nil {
		m.cfg.SubscriptionLimits = make(map[string]map[string]float64)
	}
	if m.cfg.Alerts.WarnAtPercentage == 0 && m.cfg.Alerts.CriticalAtPercentage == 0 {
		m.cfg.Alerts = defaultConfig().Alerts
	}
	return m, nil
}

func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode limits config: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write limits config: %w", err)
	}
	return nil
}

// SetLimit sets a single limit value for a provider and persists the file.
// Takes effect on the next evaluation; there is no retroactive recompute.
func (m *Manager) SetLimit(provider, limitType string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.SubscriptionLimits[provider] == nil {
		m.cfg.SubscriptionLimits[provider] = make(map[string]float64)
	}
	m.cfg.SubscriptionLimits[provider][limitType] = value
	return m.save()
}

// Providers returns the providers with configured limits, sorted.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	providers := make([]string, 0, len(m.cfg.SubscriptionLimits))
	for p := range m.cfg.SubscriptionLimits {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Thresholds returns the configured alert thresholds.
func (m *Manager) Thresholds() models.AlertThresholds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Alerts
}

// Evaluate compares a provider's summary against its configured limits.
// It returns the status for the most binding limit plus one alert string per
// breached limit. A provider with no positive limit yields a nil status:
// no limit configured means no status entry, not 100% usage.
func (m *Manager) Evaluate(provider string, summary models.UsageSummary) (*models.SubscriptionStatus, []string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	providerLimits, ok := m.cfg.SubscriptionLimits[provider]
	if !ok {
		return nil, nil
	}

	types := make([]string, 0, len(providerLimits))
	for t := range providerLimits {
		types = append(types, t)
	}
	sort.Strings(types)

	var status *models.SubscriptionStatus
	var alerts []string
	bestPct := math.Inf(-1)
	for _, limitType := range types {
		limit := providerLimits[limitType]
		if limit <= 0 {
			continue
		}

		used := float64(summary.TotalTokens)
		if currencyLimitTypes[limitType] {
			used = summary.TotalCostUSD
		}
		pct := used / limit * 100

		switch {
		case pct >= m.cfg.Alerts.CriticalAtPercentage:
			alerts = append(alerts, fmt.Sprintf("CRITICAL: %s usage at %.1f%% of %s limit", provider, pct, limitType))
		case pct >= m.cfg.Alerts.WarnAtPercentage:
			alerts = append(alerts, fmt.Sprintf("WARNING: %s usage at %.1f%% of %s limit", provider, pct, limitType))
		}

		if pct > bestPct {
			bestPct = pct
			status = &models.SubscriptionStatus{
				LimitType:   limitType,
				Limit:       limit,
				Used:        used,
				Remaining:   math.Max(0, limit-used),
				PercentUsed: math.Round(pct*100) / 100,
				Status:      m.classify(pct),
			}
		}
	}
	return status, alerts
}

func (m *Manager) classify(pct float64) string {
	switch {
	case pct >= m.cfg.Alerts.CriticalAtPercentage:
		return models.StatusCritical
	case pct >= m.cfg.Alerts.WarnAtPercentage:
		return models.StatusWarning
	default:
		return models.StatusOK
	}
}
