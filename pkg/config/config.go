// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all FilmLens configuration.
type Config struct {
	Version int `yaml:"version"`

	Server    ServerConfig    `yaml:"server"`
	Memo      MemoConfig      `yaml:"memo"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig for the HTTP server.
type ServerConfig struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	MaxUploadSize int64    `yaml:"max_upload_size"` // bytes
	CORSOrigins   []string `yaml:"cors_origins"`
}

// MemoConfig controls the content-addressed result cache.
type MemoConfig struct {
	Backend  string        `yaml:"backend"` // memory | redis
	Capacity int           `yaml:"capacity"`
	Redis    RedisConfig   `yaml:"redis"`
	TTL      time.Duration `yaml:"ttl"`
}

// RedisConfig for the redis memo backend.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
	Prefix   string `yaml:"prefix"`
}

// AnalyticsConfig controls report generation.
type AnalyticsConfig struct {
	CampaignMonth string `yaml:"campaign_month"`
	TopN          int    `yaml:"top_n"`
}

// WatchConfig for the drop-directory watcher.
type WatchConfig struct {
	Dir      string        `yaml:"dir"`
	Debounce time.Duration `yaml:"debounce"`
	OutDir   string        `yaml:"out_dir"`
}

// TelemetryConfig for optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8501,
			MaxUploadSize: 64 << 20,
			CORSOrigins:   []string{"*"},
		},
		Memo: MemoConfig{
			Backend:  "memory",
			Capacity: 16,
			Redis: RedisConfig{
				Address: "localhost:6379",
				Prefix:  "filmlens:memo:",
			},
			TTL: 24 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			CampaignMonth: "December",
			TopN:          10,
		},
		Watch: WatchConfig{
			Dir:      ".",
			Debounce: 500 * time.Millisecond,
			OutDir:   "cleaned",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{config: Default()}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()
	m.paths = nil

	for _, path := range m.configPaths() {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			continue
		}
		m.paths = append(m.paths, path)
	}

	m.loadEnv()
	return nil
}

// configPaths returns config file paths in priority order.
func (m *Manager) configPaths() []string {
	var paths []string

	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/filmlens/config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".filmlens", "config.yaml"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".filmlens.yaml"))
	}
	return paths
}

func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	if src.Server.Host != "" {
		m.config.Server.Host = src.Server.Host
	}
	if src.Server.Port != 0 {
		m.config.Server.Port = src.Server.Port
	}
	if src.Server.MaxUploadSize != 0 {
		m.config.Server.MaxUploadSize = src.Server.MaxUploadSize
	}
	if len(src.Server.CORSOrigins) > 0 {
		m.config.Server.CORSOrigins = src.Server.CORSOrigins
	}

	if src.Memo.Backend != "" {
		m.config.Memo.Backend = src.Memo.Backend
	}
	if src.Memo.Capacity != 0 {
		m.config.Memo.Capacity = src.Memo.Capacity
	}
	if src.Memo.TTL != 0 {
		m.config.Memo.TTL = src.Memo.TTL
	}
	if src.Memo.Redis.Address != "" {
		m.config.Memo.Redis.Address = src.Memo.Redis.Address
	}
	if src.Memo.Redis.Password != "" {
		m.config.Memo.Redis.Password = src.Memo.Redis.Password
	}
	if src.Memo.Redis.Database != 0 {
		m.config.Memo.Redis.Database = src.Memo.Redis.Database
	}
	if src.Memo.Redis.Prefix != "" {
		m.config.Memo.Redis.Prefix = src.Memo.Redis.Prefix
	}

	if src.Analytics.CampaignMonth != "" {
		m.config.Analytics.CampaignMonth = src.Analytics.CampaignMonth
	}
	if src.Analytics.TopN != 0 {
		m.config.Analytics.TopN = src.Analytics.TopN
	}

	if src.Watch.Dir != "" {
		m.config.Watch.Dir = src.Watch.Dir
	}
	if src.Watch.Debounce != 0 {
		m.config.Watch.Debounce = src.Watch.Debounce
	}
	if src.Watch.OutDir != "" {
		m.config.Watch.OutDir = src.Watch.OutDir
	}

	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("FILMLENS_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			m.config.Server.Port = port
		}
	}
	if v := os.Getenv("FILMLENS_MEMO_BACKEND"); v != "" {
		m.config.Memo.Backend = v
	}
	if v := os.Getenv("FILMLENS_REDIS_ADDR"); v != "" {
		m.config.Memo.Redis.Address = v
	}
	if v := os.Getenv("FILMLENS_OTLP_ENDPOINT"); v != "" {
		m.config.Telemetry.Enabled = true
		m.config.Telemetry.Endpoint = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".filmlens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
