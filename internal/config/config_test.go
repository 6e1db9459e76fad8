package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider.Default != "eastmoney" {
		t.Errorf("provider.default = %q, want eastmoney", cfg.Provider.Default)
	}
	if cfg.Provider.EastmoneyBaseURL != "https://82.push2.eastmoney.com" {
		t.Errorf("eastmoney_base_url = %q", cfg.Provider.EastmoneyBaseURL)
	}
	if cfg.Provider.TimeoutSec != 10 {
		t.Errorf("timeout_sec = %d, want 10", cfg.Provider.TimeoutSec)
	}
	if cfg.News.Limit != 10 {
		t.Errorf("news.limit = %d, want 10", cfg.News.Limit)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api.port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
provider:
  default: sina
  timeout_sec: 5
news:
  limit: 25
  sources:
    - https://example.com/feed.xml
api:
  host: 127.0.0.1
  port: 9090
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Provider.Default != "sina" {
		t.Errorf("provider.default = %q, want sina", cfg.Provider.Default)
	}
	if cfg.Provider.TimeoutSec != 5 {
		t.Errorf("timeout_sec = %d, want 5", cfg.Provider.TimeoutSec)
	}
	if len(cfg.News.Sources) != 1 || cfg.News.Sources[0] != "https://example.com/feed.xml" {
		t.Errorf("news.sources = %v", cfg.News.Sources)
	}
	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 9090 {
		t.Errorf("api = %s:%d", cfg.API.Host, cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
	// Unset keys keep their defaults.
	if cfg.Provider.SinaBaseURL != "http://hq.sinajs.cn" {
		t.Errorf("sina_base_url = %q, want default", cfg.Provider.SinaBaseURL)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ASHAREAI_API_PORT", "3333")
	t.Setenv("ASHAREAI_PROVIDER_DEFAULT", "sina")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 3333 {
		t.Errorf("api.port = %d, want env override 3333", cfg.API.Port)
	}
	if cfg.Provider.Default != "sina" {
		t.Errorf("provider.default = %q, want env override sina", cfg.Provider.Default)
	}
}
