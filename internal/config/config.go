// Package config loads settings for the espalier daemons (HTTP and MCP
// serving). Library callers never touch it; CLI flags override single fields.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries daemon settings.
type Config struct {
	// Workflows is the directory scanned for workflow sources.
	Workflows string `yaml:"workflows"`
	// Strict records parse advisories (duplicate declarations, ignored
	// lines) so validation surfaces them.
	Strict bool `yaml:"strict"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	Server ServerConfig `yaml:"server"`
	Cache  CacheConfig  `yaml:"cache"`
	Redis  RedisConfig  `yaml:"redis"`
}

// ServerConfig configures the HTTP query API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CacheConfig tunes the export cache regardless of backend.
type CacheConfig struct {
	// EncryptionKey, when set, encrypts cached exports at rest. Base64 of
	// exactly 32 bytes. The ESPALIER_CACHE_KEY environment variable takes
	// precedence, keeping key material out of config files.
	EncryptionKey string `yaml:"encryption_key"`
}

// RedisConfig wires the optional export cache. An empty Addr disables
// caching entirely.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	// TTL is a duration string such as "10m". Empty means no expiry.
	TTL string `yaml:"ttl"`
}

// Key decodes the effective encryption key, environment first. A nil key with
// nil error means encryption is off; a configured but undecodable key is an
// error so a typo never silently serves plaintext.
func (c CacheConfig) Key() ([]byte, error) {
	raw := os.Getenv("ESPALIER_CACHE_KEY")
	if raw == "" {
		raw = c.EncryptionKey
	}
	if raw == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode cache encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("cache encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// TTLDuration parses the TTL field. Empty or invalid values mean no expiry.
func (r RedisConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0
	}
	return d
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		Workflows: ".",
		LogLevel:  "info",
		Server:    ServerConfig{Addr: ":8080"},
		Redis:     RedisConfig{Prefix: "espalier"},
	}
}

// FromFile loads a YAML config file applied over Default.
func FromFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
