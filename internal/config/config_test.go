package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "PORT", "CORS_ORIGINS", "LOG_LEVEL", "LOG_JSON", "LLM_PROVIDER", "LLM_MODEL",
		"LLM_BASE_URL", "OPENAI_API_KEY", "GEMINI_API_KEY", "BATCH_SIZE", "ANALYSIS_CONCURRENCY",
		"STORAGE_DRIVER", "STORAGE_DIR", "MINIO_ENDPOINT", "MINIO_BUCKET", "DB_DRIVER", "DB_PORT",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaultsWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://example.org")
	t.Setenv("BATCH_SIZE", "25")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.APIKey != "g-key" {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://example.org" {
		t.Fatalf("CORS origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Analysis.BatchSize != 25 || cfg.Analysis.MaxAttempts != 3 || cfg.Analysis.RetryDelay != 2*time.Second {
		t.Fatalf("unexpected analysis config %+v", cfg.Analysis)
	}
	if cfg.Server.Port != 8000 || cfg.Storage.Driver != "local" || cfg.Database.Driver != "memory" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := `
server:
  port: 9090
llm:
  provider: openai
  model: gpt-4o
analysis:
  concurrency: 4
  retryDelay: 500ms
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("GEMINI_API_KEY", "ignored")
	t.Setenv("PORT", "9191")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("env should override yaml port, got %d", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o" || cfg.LLM.APIKey != "o-key" {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.Analysis.Concurrency != 4 || cfg.Analysis.RetryDelay != 500*time.Millisecond {
		t.Fatalf("unexpected analysis config %+v", cfg.Analysis)
	}
	if cfg.Analysis.BatchSize != 50 {
		t.Fatalf("unset yaml keys should keep defaults, got batch %d", cfg.Analysis.BatchSize)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected missing api key error, got %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "k")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("explicit missing config file should fail")
	}

	t.Setenv("BATCH_SIZE", "many")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "BATCH_SIZE") {
		t.Fatalf("expected BATCH_SIZE parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with key should validate: %v", err)
	}

	bad := cfg
	bad.Storage.Driver = "s3"
	if bad.Validate() == nil {
		t.Errorf("unknown storage driver accepted")
	}
	bad = cfg
	bad.Database.Driver = "sqlite"
	if bad.Validate() == nil {
		t.Errorf("unknown database driver accepted")
	}
	bad = cfg
	bad.LLM.Provider = "claude"
	if bad.Validate() == nil {
		t.Errorf("unknown provider accepted")
	}
}

func TestDSNs(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", Name: "survey", SSLMode: "disable"}}
	if got := cfg.PostgresDSN(); got != "postgres://u:p%40ss@db:5432/survey?sslmode=disable" {
		t.Fatalf("PostgresDSN = %q", got)
	}
	if got := cfg.MySQLDSN(); !strings.HasPrefix(got, "u:p@ss@tcp(db:5432)/survey?parseTime=true") {
		t.Fatalf("MySQLDSN = %q", got)
	}
}
