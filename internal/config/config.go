// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package config loads and validates application configuration via Koanf v2
// with layered sources: built-in defaults, optional YAML file, environment
// variables (highest priority).
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	NATS       NATSConfig       `koanf:"nats"`
	Consumer   ConsumerConfig   `koanf:"consumer"`
	Aggregator AggregatorConfig `koanf:"aggregator"`
	Notify     NotifyConfig     `koanf:"notify"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds the HTTP API server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`

	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// NATSConfig holds broker and JetStream stream settings.
type NATSConfig struct {
	// EmbeddedServer runs an in-process NATS server; URL is ignored when set.
	EmbeddedServer bool   `koanf:"embedded_server"`
	URL            string `koanf:"url"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	StreamName          string `koanf:"stream_name"`
	Subject             string `koanf:"subject"`
	StreamRetentionDays int    `koanf:"stream_retention_days" validate:"min=1,max=365"`

	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count" validate:"min=1,max=32"`
}

// ConsumerConfig holds the stream consumption driver settings.
type ConsumerConfig struct {
	// IdleShutdown stops the consumer when no message arrives within
	// IdleTimeout. This mirrors the capture-replay workflow where the
	// process exits once a replayed stream is exhausted; long-running
	// deployments leave it disabled.
	IdleShutdown bool          `koanf:"idle_shutdown"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	PoisonQueueEnabled   bool          `koanf:"poison_queue_enabled"`
	PoisonQueueTopic     string        `koanf:"poison_queue_topic"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// AggregatorConfig holds rolling-window tuning.
type AggregatorConfig struct {
	// WindowSize is the number of readings per sensor in the rolling mean.
	WindowSize int `koanf:"window_size" validate:"min=1"`

	// Threshold is the PM2.5 level above which (strictly) an alert fires.
	Threshold float64 `koanf:"threshold"`

	RecentAlerts   int `koanf:"recent_alerts"`
	RecentReadings int `koanf:"recent_readings"`
}

// NotifyConfig holds notification sink settings. The log sink is always on;
// the webhook sink activates when a URL is configured.
type NotifyConfig struct {
	WebhookURL           string        `koanf:"webhook_url" validate:"omitempty,url"`
	WebhookTimeout       time.Duration `koanf:"webhook_timeout"`
	WebhookRatePerSecond float64       `koanf:"webhook_rate_per_second"`
	WebhookRateBurst     int           `koanf:"webhook_rate_burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8425, // "PM2.5" on a phone keypad, roughly
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		NATS: NATSConfig{
			EmbeddedServer:      true,
			URL:                 "nats://127.0.0.1:4222",
			StoreDir:            "/data/nats/jetstream",
			MaxMemory:           1 << 30,  // 1GB
			MaxStore:            10 << 30, // 10GB
			StreamName:          "SENSORS",
			Subject:             "sensors.pm25",
			StreamRetentionDays: 7,
			DurableName:         "pm25-aggregator",
			QueueGroup:          "aggregators",
			SubscribersCount:    1, // single puller preserves per-key arrival order
		},
		Consumer: ConsumerConfig{
			IdleShutdown:         false,
			IdleTimeout:          10 * time.Second,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			PoisonQueueEnabled:   true,
			PoisonQueueTopic:     "sensors.poison",
			CloseTimeout:         30 * time.Second,
		},
		Aggregator: AggregatorConfig{
			WindowSize:     3,
			Threshold:      20.0,
			RecentAlerts:   256,
			RecentReadings: 1024,
		},
		Notify: NotifyConfig{
			WebhookURL:           "",
			WebhookTimeout:       10 * time.Second,
			WebhookRatePerSecond: 2,
			WebhookRateBurst:     5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
