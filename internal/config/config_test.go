package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_InvalidFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.Format = "xlsx"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid ingest format")
	}

	expected := `ingest.format must be "csv" or "parquet", got "xlsx"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_TopKExceedsMax(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.TopK = 50
	cfg.Retrieval.MaxTopK = 20

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for top_k > max_top_k")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected embedding model: %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Ingest.TextColumn != "customer_complaint" {
		t.Errorf("unexpected text column: %s", cfg.Ingest.TextColumn)
	}
	if cfg.Ingest.IDColumn != "ticket_#" {
		t.Errorf("unexpected id column: %s", cfg.Ingest.IDColumn)
	}
	if cfg.Ingest.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "feedback:" {
		t.Errorf("unexpected key prefix: %s", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_GenerationFallsBackToEmbeddingCredential(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{APIKey: "shared-key", BaseURL: "https://api.example.com/v1"},
	}
	cfg.ApplyDefaults()

	if cfg.Generation.APIKey != "shared-key" {
		t.Errorf("expected generation api key to fall back, got %q", cfg.Generation.APIKey)
	}
	if cfg.Generation.BaseURL != "https://api.example.com/v1" {
		t.Errorf("expected generation base url to fall back, got %q", cfg.Generation.BaseURL)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret")

	in := []byte("api_key: ${TEST_API_KEY}\nmodel: ${TEST_MISSING:-fallback}\n")
	out := string(expandEnvVars(in))

	expected := "api_key: secret\nmodel: fallback\n"
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `
http:
  port: 9090
database:
  addrs: ["localhost:6379"]
embedding:
  api_key: ${FEEDBACK_TEST_KEY}
  dimensions: 8
retrieval:
  top_k: 3
`
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FEEDBACK_TEST_KEY", "from-env")
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatal(err)
		}
	})

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "from-env" {
		t.Errorf("expected api key from env, got %q", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Dimensions != 8 {
		t.Errorf("expected dimensions 8, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("expected top_k 3, got %d", cfg.Retrieval.TopK)
	}
}
