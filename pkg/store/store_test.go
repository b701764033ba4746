package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tokenscope-ai/tokenscope/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(provider string, service models.ServiceType, model string, in, out int64, at time.Time) models.UsageRecord {
	return models.UsageRecord{
		Timestamp:    at,
		Provider:     provider,
		ServiceType:  service,
		Model:        model,
		Operation:    "test",
		InputTokens:  in,
		OutputTokens: out,
		TotalTokens:  in + out,
		APIKeyID:     "...abcd",
		CostUSD:      0.01,
	}
}

func TestInsertAndRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := record("openai", models.ServiceLLM, "gpt-4o", 100, 50, now)
	rec.Metadata = map[string]any{"operation_id": "abc"}
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.Records(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].TotalTokens != 150 {
		t.Errorf("expected 150 total tokens, got %d", got[0].TotalTokens)
	}
	if got[0].Metadata["operation_id"] != "abc" {
		t.Errorf("expected metadata round-trip, got %v", got[0].Metadata)
	}
}

func TestProviderTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o", 100, 50, now.Add(time.Duration(i)*time.Second)))
	}
	_ = s.Insert(ctx, record("anthropic", models.ServiceLLM, "claude-3-haiku-20240307", 10, 10, now))

	totals, err := s.ProviderTotals(ctx, "openai", now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if totals.Requests != 3 {
		t.Errorf("expected 3 requests, got %d", totals.Requests)
	}
	if totals.TotalTokens != 450 {
		t.Errorf("expected 450 tokens, got %d", totals.TotalTokens)
	}
	if totals.InputTokens != 300 || totals.OutputTokens != 150 {
		t.Errorf("unexpected input/output split: %d/%d", totals.InputTokens, totals.OutputTokens)
	}
}

func TestProviderTotalsEmpty(t *testing.T) {
	s := newTestStore(t)

	totals, err := s.ProviderTotals(context.Background(), "nobody", time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if totals.Requests != 0 || totals.TotalTokens != 0 || totals.CostUSD != 0 {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}

func TestServiceTypeBreakdown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o", 100, 50, now))
	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o-mini", 10, 5, now))
	_ = s.Insert(ctx, record("openai", models.ServiceEmbedding, "text-embedding-3-small", 40, 0, now))

	breakdown, err := s.ServiceTypeBreakdown(ctx, "openai", now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 service types, got %d", len(breakdown))
	}
	// Ordered by service type: embedding before llm.
	if breakdown[0].ServiceType != models.ServiceEmbedding || breakdown[0].Tokens != 40 {
		t.Errorf("unexpected embedding row: %+v", breakdown[0])
	}
	if breakdown[1].ServiceType != models.ServiceLLM || breakdown[1].Requests != 2 {
		t.Errorf("unexpected llm row: %+v", breakdown[1])
	}
}

func TestModelBreakdownOrdersByTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o-mini", 10, 5, now))
	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o", 1000, 500, now))

	breakdown, err := s.ModelBreakdown(ctx, "openai", now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 models, got %d", len(breakdown))
	}
	if breakdown[0].Model != "gpt-4o" {
		t.Errorf("expected heaviest model first, got %s", breakdown[0].Model)
	}
}

func TestOverallTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o", 100, 50, now))
	_ = s.Insert(ctx, record("anthropic", models.ServiceLLM, "claude-3-haiku-20240307", 10, 10, now))

	failed := record("gemini", models.ServiceLLM, "gemini-2.0-flash", 0, 0, now)
	failed.Error = true
	failed.ErrorMessage = "rate limited"
	failed.CostUSD = 0
	_ = s.Insert(ctx, failed)

	totals, err := s.OverallTotals(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if totals.ProviderCount != 3 {
		t.Errorf("expected 3 providers, got %d", totals.ProviderCount)
	}
	if totals.TotalRequests != 3 {
		t.Errorf("expected 3 requests, got %d", totals.TotalRequests)
	}
	if totals.ErrorCount != 1 {
		t.Errorf("expected 1 error, got %d", totals.ErrorCount)
	}
	if totals.TotalTokens != 170 {
		t.Errorf("expected 170 tokens, got %d", totals.TotalTokens)
	}
}

func TestProviderServiceBreakdown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o", 100, 50, now))
	_ = s.Insert(ctx, record("openai", models.ServiceEmbedding, "text-embedding-3-small", 40, 0, now))
	_ = s.Insert(ctx, record("anthropic", models.ServiceLLM, "claude-3-haiku-20240307", 10, 10, now))

	rows, err := s.ProviderServiceBreakdown(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Provider != "anthropic" {
		t.Errorf("expected anthropic first, got %s", rows[0].Provider)
	}
	if rows[1].Provider != "openai" || rows[1].ServiceType != models.ServiceEmbedding {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}

func TestPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o", 1, 1, now.AddDate(0, 0, -100)))
	_ = s.Insert(ctx, record("openai", models.ServiceLLM, "gpt-4o", 1, 1, now))

	deleted, err := s.Purge(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	// Purging everything.
	deleted, err = s.Purge(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	totals, err := s.ProviderTotals(ctx, "openai", now.AddDate(0, 0, -365))
	if err != nil {
		t.Fatal(err)
	}
	if totals.Requests != 0 {
		t.Errorf("expected empty store after purge, got %d requests", totals.Requests)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_ = s1.Close()

	s2, err := New(dbPath)
	if err != nil {
		t.Fatal("second New() failed:", err)
	}
	_ = s2.Close()
}
