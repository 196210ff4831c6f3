package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var DefaultProdPatterns = []string{"prod", "production", "prd", "live"}

// AppConfig holds all configuration for kr.
type AppConfig struct {
	ProdPatterns       []string    `yaml:"prod_patterns"`
	ReadonlyNamespaces []string    `yaml:"readonly_namespaces"`
	Logs               LogConfig   `yaml:"logs"`
	Watch              WatchConfig `yaml:"watch"`
	Exec               ExecConfig  `yaml:"exec"`
	Cache              CacheConfig `yaml:"cache"`
}

// CacheConfig bounds how long cluster lookups that are not covered by a
// watch (namespace listings) stay fresh.
type CacheConfig struct {
	NamespaceTTL time.Duration `yaml:"namespace_ttl"`
}

// LogConfig bounds the in-memory log buffer and the server-side tail.
type LogConfig struct {
	Capacity int   `yaml:"capacity"`
	Tail     int64 `yaml:"tail"`
}

// WatchConfig tunes the reconnect backoff of watch subscriptions.
type WatchConfig struct {
	BackoffBase time.Duration `yaml:"backoff_base"`
	BackoffMax  time.Duration `yaml:"backoff_max"`
}

// ExecConfig holds exec/shell settings.
type ExecConfig struct {
	Shell string `yaml:"shell"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		ProdPatterns:       DefaultProdPatterns,
		ReadonlyNamespaces: nil,
		Logs: LogConfig{
			Capacity: 10000,
			Tail:     500,
		},
		Watch: WatchConfig{
			BackoffBase: 250 * time.Millisecond,
			BackoffMax:  2 * time.Second,
		},
		Exec: ExecConfig{
			Shell: "/bin/sh",
		},
		Cache: CacheConfig{
			NamespaceTTL: 30 * time.Second,
		},
	}
}

// Dir returns the kr configuration directory (~/.config/kr).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kr"), nil
}

// LoadConfig loads from the default path ~/.config/kr/config.yaml.
func LoadConfig() (*AppConfig, error) {
	dir, err := Dir()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfigFrom(filepath.Join(dir, "config.yaml"))
}

// LoadConfigFrom loads config from a specific file path.
// Returns defaults if the file does not exist.
func LoadConfigFrom(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults for zero values
	if len(cfg.ProdPatterns) == 0 {
		cfg.ProdPatterns = DefaultProdPatterns
	}
	if cfg.Logs.Capacity <= 0 {
		cfg.Logs.Capacity = 10000
	}
	if cfg.Logs.Tail <= 0 {
		cfg.Logs.Tail = 500
	}
	if cfg.Watch.BackoffBase <= 0 {
		cfg.Watch.BackoffBase = 250 * time.Millisecond
	}
	if cfg.Watch.BackoffMax <= 0 {
		cfg.Watch.BackoffMax = 2 * time.Second
	}
	if cfg.Exec.Shell == "" {
		cfg.Exec.Shell = "/bin/sh"
	}
	if cfg.Cache.NamespaceTTL <= 0 {
		cfg.Cache.NamespaceTTL = 30 * time.Second
	}

	return cfg, nil
}

// IsReadonlyNamespace checks if a namespace matches any readonly pattern.
// Supports glob matching (e.g. "openshift-*").
func IsReadonlyNamespace(namespace string, patterns []string) bool {
	if namespace == "" || len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		matched, err := filepath.Match(p, namespace)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// IsProdNamespace checks if a namespace name matches production patterns.
// Matching is done by segment (split on -._) to avoid false positives
// like "product-api" matching "prod".
func IsProdNamespace(namespace string, patterns []string) bool {
	if len(patterns) == 0 {
		patterns = DefaultProdPatterns
	}
	ns := strings.ToLower(namespace)
	segments := splitSegments(ns)

	for _, p := range patterns {
		p = strings.ToLower(p)
		// Check if any segment matches the pattern exactly
		for _, seg := range segments {
			if seg == p {
				return true
			}
		}
	}
	return false
}

// splitSegments splits a namespace name on common separators.
func splitSegments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '.' || r == '_'
	})
}
