package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	BunaSIEM BunaSIEMConfig `yaml:"bunasiem"`
}

// BunaSIEMConfig is the project configuration.
type BunaSIEMConfig struct {
	Input      InputConfig      `yaml:"input"`
	API        APIConfig        `yaml:"api"`
	Store      StoreConfig      `yaml:"store"`
	Rules      RulesConfig      `yaml:"rules"`
	Reputation ReputationConfig `yaml:"reputation"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// InputConfig controls the log intake side.
type InputConfig struct {
	Redis RedisInputConfig `yaml:"redis"`
}

// RedisInputConfig controls the Redis list consumer.
type RedisInputConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// StoreConfig selects and configures the retention backing store.
type StoreConfig struct {
	Mode     string         `yaml:"mode"` // memory|postgres
	Capacity int            `yaml:"capacity"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig configures the relational store.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// RulesConfig controls the detection catalog.
type RulesConfig struct {
	SuspiciousIPs []string    `yaml:"suspicious_ips"`
	Sigma         SigmaConfig `yaml:"sigma"`
}

// SigmaConfig controls optional Sigma rule loading.
type SigmaConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ReputationConfig controls the Redis-backed known-bad IP set.
type ReputationConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AlertsConfig controls alert delivery.
type AlertsConfig struct {
	Outputs []AlertOutputConfig `yaml:"outputs"`
}

// AlertOutputConfig configures one alert sink.
type AlertOutputConfig struct {
	Mode string           `yaml:"mode"` // file|http|nats
	File FileOutputConfig `yaml:"file"`
	HTTP HTTPOutputConfig `yaml:"http"`
	NATS NATSOutputConfig `yaml:"nats"`
}

// FileOutputConfig config for local JSONL output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for remote webhook output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// NATSOutputConfig config for NATS publishing.
type NATSOutputConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
