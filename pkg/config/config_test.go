package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DBFile != "token_usage.db" {
		t.Errorf("expected token_usage.db, got %s", cfg.DBFile)
	}
	if cfg.RetentionDays != 90 {
		t.Errorf("expected 90 retention days, got %d", cfg.RetentionDays)
	}
	if cfg.DBPath() != filepath.Join(cfg.StorageDir, "token_usage.db") {
		t.Errorf("unexpected db path: %s", cfg.DBPath())
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_STORAGE_DIR", "/tmp/tokenscope-test")

	content := `
storage_dir: ${TEST_STORAGE_DIR}
retention_days: 30
pricing:
  - model: my-private-model
    input_per_1m: 1.25
    output_per_1m: 5.0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.StorageDir != "/tmp/tokenscope-test" {
		t.Errorf("env var not expanded: got %s", cfg.StorageDir)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("expected 30 retention days, got %d", cfg.RetentionDays)
	}
	if cfg.LimitsFile != "monitor_config.json" {
		t.Errorf("expected default limits file, got %s", cfg.LimitsFile)
	}
	if len(cfg.Pricing) != 1 {
		t.Fatalf("expected 1 pricing override, got %d", len(cfg.Pricing))
	}
	if cfg.Pricing[0].Model != "my-private-model" || cfg.Pricing[0].Output != 5.0 {
		t.Errorf("unexpected pricing override: %+v", cfg.Pricing[0])
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("missing config must not be an error: %v", err)
	}
	if cfg.DBFile != "token_usage.db" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage_dir: [not a string"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
