// Package store persists usage records in a local SQLite database and
// exposes the grouped aggregate queries the summary layer is built on.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tokenscope-ai/tokenscope/pkg/models"
)

const createTable = `
CREATE TABLE IF NOT EXISTS token_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL,
	provider TEXT NOT NULL,
	service_type TEXT NOT NULL,
	model TEXT NOT NULL,
	operation TEXT NOT NULL,
	input_tokens INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	api_key_id TEXT NOT NULL,
	cost_usd REAL NOT NULL DEFAULT 0.0,
	metadata TEXT,
	error BOOLEAN NOT NULL DEFAULT FALSE,
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON token_usage(timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON token_usage(provider);
CREATE INDEX IF NOT EXISTS idx_usage_api_key ON token_usage(api_key_id);
CREATE INDEX IF NOT EXISTS idx_usage_service_type ON token_usage(service_type);
`

// Store is an append-only SQLite store of usage records. The only delete
// path is Purge.
type Store struct {
	db *sql.DB
}

// Totals holds the ungrouped aggregate over a set of records.
type Totals struct {
	Requests     int64
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// New opens (or creates) the database at dbPath and runs auto-migration.
// WAL mode and a busy timeout keep concurrent writers from tripping over
// the write lock.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate usage db: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert appends a complete record, including its precomputed cost. No
// uniqueness constraint is enforced; callers own double-logging avoidance.
func (s *Store) Insert(ctx context.Context, rec models.UsageRecord) error {
	var metadata any
	if rec.Metadata != nil {
		b, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = string(b)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO token_usage (
			timestamp, provider, service_type, model, operation,
			input_tokens, output_tokens, total_tokens, api_key_id,
			cost_usd, metadata, error, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.Provider, string(rec.ServiceType), rec.Model, rec.Operation,
		rec.InputTokens, rec.OutputTokens, rec.TotalTokens, rec.APIKeyID,
		rec.CostUSD, metadata, rec.Error, rec.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// ProviderTotals returns the ungrouped totals for a provider since a given time.
func (s *Store) ProviderTotals(ctx context.Context, provider string, since time.Time) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0)
		 FROM token_usage WHERE provider = ? AND timestamp > ?`,
		provider, since,
	).Scan(&t.Requests, &t.InputTokens, &t.OutputTokens, &t.TotalTokens, &t.CostUSD)
	if err != nil {
		return Totals{}, fmt.Errorf("provider totals: %w", err)
	}
	return t, nil
}

// ServiceTypeBreakdown returns per-service-type aggregates for a provider.
func (s *Store) ServiceTypeBreakdown(ctx context.Context, provider string, since time.Time) ([]models.ServiceTypeUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT service_type, COUNT(*), COALESCE(SUM(total_tokens), 0)
		 FROM token_usage WHERE provider = ? AND timestamp > ?
		 GROUP BY service_type ORDER BY service_type`,
		provider, since,
	)
	if err != nil {
		return nil, fmt.Errorf("service type breakdown: %w", err)
	}
	defer rows.Close()

	var out []models.ServiceTypeUsage
	for rows.Next() {
		var u models.ServiceTypeUsage
		if err := rows.Scan(&u.ServiceType, &u.Requests, &u.Tokens); err != nil {
			return nil, fmt.Errorf("scan service type breakdown: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ModelBreakdown returns per-model aggregates for a provider, heaviest first.
func (s *Store) ModelBreakdown(ctx context.Context, provider string, since time.Time) ([]models.ModelUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, COUNT(*), COALESCE(SUM(total_tokens), 0), COALESCE(SUM(cost_usd), 0)
		 FROM token_usage WHERE provider = ? AND timestamp > ?
		 GROUP BY model ORDER BY SUM(total_tokens) DESC`,
		provider, since,
	)
	if err != nil {
		return nil, fmt.Errorf("model breakdown: %w", err)
	}
	defer rows.Close()

	var out []models.ModelUsage
	for rows.Next() {
		var u models.ModelUsage
		if err := rows.Scan(&u.Model, &u.Requests, &u.Tokens, &u.CostUSD); err != nil {
			return nil, fmt.Errorf("scan model breakdown: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// OverallTotals returns cross-provider statistics for an explicit range.
func (s *Store) OverallTotals(ctx context.Context, start, end time.Time) (models.ReportTotals, error) {
	var t models.ReportTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT provider),
			COUNT(DISTINCT api_key_id),
			COUNT(*),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0),
			COALESCE(SUM(CASE WHEN error THEN 1 ELSE 0 END), 0)
		 FROM token_usage WHERE timestamp BETWEEN ? AND ?`,
		start, end,
	).Scan(&t.ProviderCount, &t.APIKeyCount, &t.TotalRequests, &t.TotalTokens, &t.TotalCostUSD, &t.ErrorCount)
	if err != nil {
		return models.ReportTotals{}, fmt.Errorf("overall totals: %w", err)
	}
	return t, nil
}

// ProviderServiceBreakdown returns aggregates grouped by provider and
// service type for an explicit range.
func (s *Store) ProviderServiceBreakdown(ctx context.Context, start, end time.Time) ([]models.ProviderServiceUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, service_type, COUNT(*),
			COALESCE(SUM(total_tokens), 0), COALESCE(SUM(cost_usd), 0)
		 FROM token_usage WHERE timestamp BETWEEN ? AND ?
		 GROUP BY provider, service_type ORDER BY provider, service_type`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("provider breakdown: %w", err)
	}
	defer rows.Close()

	var out []models.ProviderServiceUsage
	for rows.Next() {
		var u models.ProviderServiceUsage
		if err := rows.Scan(&u.Provider, &u.ServiceType, &u.Requests, &u.Tokens, &u.CostUSD); err != nil {
			return nil, fmt.Errorf("scan provider breakdown: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Records returns full rows in a range, newest first. Used by CSV export.
func (s *Store) Records(ctx context.Context, start, end time.Time) ([]models.UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, provider, service_type, model, operation,
			input_tokens, output_tokens, total_tokens, api_key_id,
			cost_usd, metadata, error, error_message
		 FROM token_usage WHERE timestamp BETWEEN ? AND ?
		 ORDER BY timestamp DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		var metadata, errMsg sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Provider, &r.ServiceType, &r.Model, &r.Operation,
			&r.InputTokens, &r.OutputTokens, &r.TotalTokens, &r.APIKeyID,
			&r.CostUSD, &metadata, &r.Error, &errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.ErrorMessage = errMsg.String
		if metadata.Valid && metadata.String != "" {
			_ = json.Unmarshal([]byte(metadata.String), &r.Metadata)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Purge deletes all records with a timestamp before cutoff and returns the
// number deleted. Irreversible.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM token_usage WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge usage: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
