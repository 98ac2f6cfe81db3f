package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration file (INK_CONFIG).
// Environment variables override file values.
type fileConfig struct {
	Port               string  `yaml:"port"`
	RecordsDB          string  `yaml:"records_db"`
	Model              string  `yaml:"model"`
	MaxSVGBytes        int64   `yaml:"max_svg_bytes"`
	Padding            float64 `yaml:"padding"`
	EventRetentionDays int     `yaml:"event_retention_days"`
}

func (c *fileConfig) defaults() {
	if c.Port == "" {
		c.Port = "8086"
	}
	if c.RecordsDB == "" {
		c.RecordsDB = "db/ink.db"
	}
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.EventRetentionDays <= 0 {
		c.EventRetentionDays = 30
	}
}

// loadConfig reads the YAML file at path when set, then applies defaults.
func loadConfig(path string) (*fileConfig, error) {
	var cfg fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.defaults()
	return &cfg, nil
}

// env returns the environment value or a fallback.
func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
