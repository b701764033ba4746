// Package monitor is the single entry point for metering provider calls:
// it computes costs, persists usage records, aggregates summaries, and
// evaluates subscription alerts.
package monitor

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tokenscope-ai/tokenscope/pkg/config"
	"github.com/tokenscope-ai/tokenscope/pkg/limits"
	"github.com/tokenscope-ai/tokenscope/pkg/models"
	"github.com/tokenscope-ai/tokenscope/pkg/pricing"
	"github.com/tokenscope-ai/tokenscope/pkg/store"
)

// DefaultWindowDays is the trailing aggregation window for summaries.
const DefaultWindowDays = 30

// ErrNegativeTokens is returned when an event carries a negative token count.
var ErrNegativeTokens = errors.New("negative token count")

// Event is one provider call to meter.
type Event struct {
	Provider     string
	ServiceType  models.ServiceType
	Model        string
	Operation    string
	InputTokens  int64
	OutputTokens int64
	APIKey       string
	Metadata     map[string]any
	Error        bool
	ErrorMessage string
}

// LogResult is everything LogUsage produced: the stored record, the
// provider's refreshed 30-day summary, and any triggered alerts.
type LogResult struct {
	Record  models.UsageRecord
	Summary models.UsageSummary
	Alerts  []string
}

// Monitor coordinates pricing, storage, and limit evaluation. Safe to call
// from many concurrent call sites; inserts are single-statement writes that
// serialize at the SQLite layer.
type Monitor struct {
	store   *store.Store
	pricing pricing.Table
	limits  *limits.Manager
}

// New builds a Monitor from configuration, creating the storage directory
// and seeding the limits file on first run.
func New(cfg *config.Config) (*Monitor, error) {
	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, err
	}

	lm, err := limits.Load(cfg.LimitsPath())
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Monitor{
		store:   st,
		pricing: pricing.Default().Apply(cfg.Pricing),
		limits:  lm,
	}, nil
}

// RedactKey reduces an API key to a loggable identifier: its last four
// characters, or a sentinel when the key is too short or absent.
func RedactKey(apiKey string) string {
	if apiKey == "" {
		return "default"
	}
	if len(apiKey) <= 4 {
		return "****"
	}
	return "..." + apiKey[len(apiKey)-4:]
}

// LogUsage computes the event's cost, persists it, refreshes the provider's
// trailing summary, and evaluates alerts. This is the only write path.
// Storage failures propagate: usage accounting must not silently lose data.
func (m *Monitor) LogUsage(ctx context.Context, ev Event) (LogResult, error) {
	if ev.InputTokens < 0 || ev.OutputTokens < 0 {
		return LogResult{}, fmt.Errorf("%w: input=%d output=%d", ErrNegativeTokens, ev.InputTokens, ev.OutputTokens)
	}

	rec := models.UsageRecord{
		Timestamp:    time.Now().UTC(),
		Provider:     ev.Provider,
		ServiceType:  ev.ServiceType,
		Model:        ev.Model,
		Operation:    ev.Operation,
		InputTokens:  ev.InputTokens,
		OutputTokens: ev.OutputTokens,
		TotalTokens:  ev.InputTokens + ev.OutputTokens,
		APIKeyID:     RedactKey(ev.APIKey),
		CostUSD:      m.pricing.Cost(ev.Model, ev.InputTokens, ev.OutputTokens),
		Metadata:     ev.Metadata,
		Error:        ev.Error,
		ErrorMessage: ev.ErrorMessage,
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		return LogResult{}, err
	}

	summary, err := m.ProviderSummary(ctx, ev.Provider, DefaultWindowDays)
	if err != nil {
		return LogResult{}, err
	}

	_, alerts := m.limits.Evaluate(ev.Provider, summary)
	for _, a := range alerts {
		log.Warn(a)
	}

	return LogResult{Record: rec, Summary: summary, Alerts: alerts}, nil
}

// ProviderSummary aggregates a provider's usage over the trailing window.
// Aggregation happens in grouped SQL queries, never by scanning rows.
func (m *Monitor) ProviderSummary(ctx context.Context, provider string, days int) (models.UsageSummary, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	totals, err := m.store.ProviderTotals(ctx, provider, since)
	if err != nil {
		return models.UsageSummary{}, err
	}
	byService, err := m.store.ServiceTypeBreakdown(ctx, provider, since)
	if err != nil {
		return models.UsageSummary{}, err
	}
	byModel, err := m.store.ModelBreakdown(ctx, provider, since)
	if err != nil {
		return models.UsageSummary{}, err
	}

	return models.UsageSummary{
		Provider:          provider,
		PeriodDays:        days,
		TotalRequests:     totals.Requests,
		TotalInputTokens:  totals.InputTokens,
		TotalOutputTokens: totals.OutputTokens,
		TotalTokens:       totals.TotalTokens,
		TotalCostUSD:      totals.CostUSD,
		ByServiceType:     byService,
		ByModel:           byModel,
	}, nil
}

// ComprehensiveReport builds a cross-provider report for [start, end].
// Zero times default to the trailing 30 days.
func (m *Monitor) ComprehensiveReport(ctx context.Context, start, end time.Time) (models.ComprehensiveReport, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -DefaultWindowDays)
	}

	totals, err := m.store.OverallTotals(ctx, start, end)
	if err != nil {
		return models.ComprehensiveReport{}, err
	}
	byProvider, err := m.store.ProviderServiceBreakdown(ctx, start, end)
	if err != nil {
		return models.ComprehensiveReport{}, err
	}

	status := make(map[string]models.SubscriptionStatus)
	for _, provider := range m.limits.Providers() {
		summary, err := m.ProviderSummary(ctx, provider, DefaultWindowDays)
		if err != nil {
			return models.ComprehensiveReport{}, err
		}
		if st, _ := m.limits.Evaluate(provider, summary); st != nil {
			status[provider] = *st
		}
	}

	return models.ComprehensiveReport{
		Period:             models.ReportPeriod{Start: start, End: end},
		Summary:            totals,
		ByProvider:         byProvider,
		SubscriptionStatus: status,
	}, nil
}

// SubscriptionAlerts evaluates all configured providers and returns every
// triggered alert string.
func (m *Monitor) SubscriptionAlerts(ctx context.Context) ([]string, error) {
	var all []string
	for _, provider := range m.limits.Providers() {
		summary, err := m.ProviderSummary(ctx, provider, DefaultWindowDays)
		if err != nil {
			return nil, err
		}
		_, alerts := m.limits.Evaluate(provider, summary)
		all = append(all, alerts...)
	}
	return all, nil
}

// SetSubscriptionLimit persists a limit value; it takes effect on the next
// aggregation call.
func (m *Monitor) SetSubscriptionLimit(provider, limitType string, value float64) error {
	return m.limits.SetLimit(provider, limitType, value)
}

var csvHeader = []string{
	"id", "timestamp", "provider", "service_type", "model", "operation",
	"input_tokens", "output_tokens", "total_tokens", "api_key_id",
	"cost_usd", "metadata", "error", "error_message",
}

// ExportCSV writes all records in [start, end] to a CSV file and returns a
// human-readable summary. Zero times default to the trailing 30 days.
func (m *Monitor) ExportCSV(ctx context.Context, path string, start, end time.Time) (string, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -DefaultWindowDays)
	}

	records, err := m.store.Records(ctx, start, end)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write export header: %w", err)
	}
	for _, r := range records {
		var metadata string
		if r.Metadata != nil {
			b, _ := json.Marshal(r.Metadata)
			metadata = string(b)
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.Format(time.RFC3339Nano),
			r.Provider,
			string(r.ServiceType),
			r.Model,
			r.Operation,
			strconv.FormatInt(r.InputTokens, 10),
			strconv.FormatInt(r.OutputTokens, 10),
			strconv.FormatInt(r.TotalTokens, 10),
			r.APIKeyID,
			strconv.FormatFloat(r.CostUSD, 'f', -1, 64),
			metadata,
			strconv.FormatBool(r.Error),
			r.ErrorMessage,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}

	return fmt.Sprintf("Exported %d records to %s", len(records), path), nil
}

// CleanupOldData deletes records older than daysToKeep days and returns the
// number deleted.
func (m *Monitor) CleanupOldData(ctx context.Context, daysToKeep int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysToKeep)
	deleted, err := m.store.Purge(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Infof("purged %d usage records older than %d days", deleted, daysToKeep)
	}
	return deleted, nil
}

// Records returns raw rows in a range, newest first.
func (m *Monitor) Records(ctx context.Context, start, end time.Time) ([]models.UsageRecord, error) {
	return m.store.Records(ctx, start, end)
}

// Close releases storage resources.
func (m *Monitor) Close() error {
	return m.store.Close()
}
