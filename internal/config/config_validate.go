// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NATS limit constants
const (
	natsMinMemory = 64 * 1024 * 1024  // 64MB
	natsMinStore  = 100 * 1024 * 1024 // 100MB
)

// Validate checks the configuration for invalid or inconsistent values.
// Struct tags cover range and enum checks; cross-field and semantic rules
// are applied on top.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	validators := []func() error{
		c.validateNATS,
		c.validateConsumer,
		c.validateAggregator,
	}
	for _, fn := range validators {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// validateNATS checks broker settings.
func (c *Config) validateNATS() error {
	if !c.NATS.EmbeddedServer {
		u, err := url.Parse(c.NATS.URL)
		if err != nil || (u.Scheme != "nats" && u.Scheme != "tls") || u.Host == "" {
			return fmt.Errorf("AERO_NATS_URL must be a nats:// or tls:// URL, got %q", c.NATS.URL)
		}
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.MaxMemory < natsMinMemory {
			return fmt.Errorf("AERO_NATS_MAX_MEMORY must be at least 64MB (67108864 bytes)")
		}
		if c.NATS.MaxStore < natsMinStore {
			return fmt.Errorf("AERO_NATS_MAX_STORE must be at least 100MB (104857600 bytes)")
		}
	}
	if c.NATS.StreamName == "" || c.NATS.Subject == "" {
		return fmt.Errorf("AERO_NATS_STREAM_NAME and AERO_NATS_SUBJECT must not be empty")
	}
	return nil
}

// validateConsumer checks driver settings.
func (c *Config) validateConsumer() error {
	if c.Consumer.IdleShutdown && c.Consumer.IdleTimeout < time.Second {
		return fmt.Errorf("AERO_CONSUMER_IDLE_TIMEOUT must be at least 1s when idle shutdown is enabled")
	}
	if c.Consumer.RetryCount < 0 {
		return fmt.Errorf("AERO_CONSUMER_RETRY_COUNT must not be negative")
	}
	if c.Consumer.PoisonQueueEnabled && c.Consumer.PoisonQueueTopic == "" {
		return fmt.Errorf("AERO_CONSUMER_POISON_QUEUE_TOPIC must not be empty when the poison queue is enabled")
	}
	return nil
}

// validateAggregator checks rolling-window tuning.
func (c *Config) validateAggregator() error {
	if c.Aggregator.Threshold < 0 {
		return fmt.Errorf("AERO_AGGREGATOR_THRESHOLD must not be negative")
	}
	return nil
}
