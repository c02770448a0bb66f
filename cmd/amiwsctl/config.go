package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML config file. Durations use Go
// duration syntax ("5s", "250ms").
type fileConfig struct {
	URL                  string `yaml:"url"`
	ActionTimeout        string `yaml:"action_timeout"`
	AutoReconnect        *bool  `yaml:"auto_reconnect"`
	ReconnectDelay       string `yaml:"reconnect_delay"`
	MaxReconnectAttempts int    `yaml:"max_reconnect_attempts"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config field %s: %w", field, err)
	}
	return d, nil
}
