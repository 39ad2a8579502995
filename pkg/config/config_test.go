package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8501 {
		t.Errorf("Expected default port 8501, got %d", cfg.Server.Port)
	}
	if cfg.Memo.Backend != "memory" {
		t.Errorf("Expected memory backend, got %q", cfg.Memo.Backend)
	}
	if cfg.Memo.Redis.Prefix != "filmlens:memo:" {
		t.Errorf("Unexpected redis prefix: %q", cfg.Memo.Redis.Prefix)
	}
	if cfg.Analytics.CampaignMonth != "December" {
		t.Errorf("Expected December campaign month, got %q", cfg.Analytics.CampaignMonth)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected 500ms debounce, got %v", cfg.Watch.Debounce)
	}
}

func TestMerge_PartialOverride(t *testing.T) {
	m := NewManager()
	m.merge(&Config{
		Server: ServerConfig{Port: 9000},
		Memo:   MemoConfig{Backend: "redis"},
	})

	cfg := m.Get()
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected merged port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Memo.Backend != "redis" {
		t.Errorf("Expected merged backend redis, got %q", cfg.Memo.Backend)
	}
	// Untouched fields keep their defaults.
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected default host retained, got %q", cfg.Server.Host)
	}
	if cfg.Memo.Capacity != 16 {
		t.Errorf("Expected default capacity retained, got %d", cfg.Memo.Capacity)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 9100\nanalytics:\n  top_n: 5\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := NewManager()
	if err := m.loadFile(path); err != nil {
		t.Fatalf("loadFile failed: %v", err)
	}

	cfg := m.Get()
	if cfg.Server.Port != 9100 {
		t.Errorf("Expected port 9100 from file, got %d", cfg.Server.Port)
	}
	if cfg.Analytics.TopN != 5 {
		t.Errorf("Expected top_n 5 from file, got %d", cfg.Analytics.TopN)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("server: [not a map"), 0644)

	m := NewManager()
	if err := m.loadFile(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("FILMLENS_PORT", "9200")
	t.Setenv("FILMLENS_MEMO_BACKEND", "redis")
	t.Setenv("FILMLENS_REDIS_ADDR", "redis.internal:6379")

	m := NewManager()
	m.loadEnv()

	cfg := m.Get()
	if cfg.Server.Port != 9200 {
		t.Errorf("Expected port 9200 from env, got %d", cfg.Server.Port)
	}
	if cfg.Memo.Backend != "redis" {
		t.Errorf("Expected redis backend from env, got %q", cfg.Memo.Backend)
	}
	if cfg.Memo.Redis.Address != "redis.internal:6379" {
		t.Errorf("Expected redis address from env, got %q", cfg.Memo.Redis.Address)
	}
}
