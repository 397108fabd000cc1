package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	HTTP        HTTPConfig        `yaml:"http"`
	Realtime    RealtimeConfig    `yaml:"realtime"`
	Sync        SyncConfig        `yaml:"sync"`
	Fulfillment FulfillmentConfig `yaml:"fulfillment"`
	Stores      StoresConfig      `yaml:"stores"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type RealtimeConfig struct {
	// SubscriberBuffer caps each subscription's outbound queue; a full
	// queue drops its oldest event rather than blocking the publisher.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

type SyncConfig struct {
	// AutoApprove lets under-threshold price updates skip human review.
	// Updates over the variance threshold stay pending no matter what.
	AutoApprove bool `yaml:"auto_approve"`
	// ReviewFirstSeen forces manual review of first-time prices even
	// when AutoApprove is on.
	ReviewFirstSeen bool `yaml:"review_first_seen"`
}

type FulfillmentConfig struct {
	// MaxRetries bounds retries of the validate-persist sequence after
	// a lost concurrent-update race.
	MaxRetries int `yaml:"max_retries"`
}

type StoresConfig struct {
	// DefaultCutoffHour applies to stores onboarded without an explicit
	// cutoff. Whole hours only: the attribution comparison never reads
	// minutes, so sub-hour cutoffs are not configurable.
	DefaultCutoffHour int `yaml:"default_cutoff_hour"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Database:    DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "disable"},
		RabbitMQ:    RabbitMQConfig{Host: "localhost", Port: 5672},
		HTTP:        HTTPConfig{Port: 3000},
		Realtime:    RealtimeConfig{SubscriberBuffer: 64},
		Sync:        SyncConfig{AutoApprove: true, ReviewFirstSeen: true},
		Fulfillment: FulfillmentConfig{MaxRetries: 3},
		Stores:      StoresConfig{DefaultCutoffHour: 4},
	}
}

// Секреты берём из окружения, а не из файла конфигурации.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("RABBITMQ_USER"); v != "" {
		cfg.RabbitMQ.User = v
	}
	if v := os.Getenv("RABBITMQ_PASSWORD"); v != "" {
		cfg.RabbitMQ.Password = v
	}
}

func (c *Config) validate() error {
	if c.Stores.DefaultCutoffHour < 0 || c.Stores.DefaultCutoffHour > 23 {
		return fmt.Errorf("default_cutoff_hour %d out of range 0-23", c.Stores.DefaultCutoffHour)
	}
	if c.Fulfillment.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.Fulfillment.MaxRetries)
	}
	if c.Realtime.SubscriberBuffer < 1 {
		return fmt.Errorf("subscriber_buffer must be at least 1, got %d", c.Realtime.SubscriberBuffer)
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	return nil
}
