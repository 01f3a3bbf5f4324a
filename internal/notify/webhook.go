// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// WebhookConfig configures the webhook sink.
type WebhookConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"` // custom headers (e.g. auth)
	Timeout time.Duration     `json:"timeout"`

	// RatePerSecond caps outgoing deliveries; bursts up to RateBurst.
	// Zero disables rate limiting.
	RatePerSecond float64 `json:"rate_per_second"`
	RateBurst     int     `json:"rate_burst"`

	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit; BreakerTimeout is how long it stays open.
	BreakerThreshold uint32        `json:"breaker_threshold"`
	BreakerTimeout   time.Duration `json:"breaker_timeout"`
}

// DefaultWebhookConfig returns production defaults.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Timeout:          10 * time.Second,
		RatePerSecond:    2,
		RateBurst:        5,
		BreakerThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

// WebhookPayload is the JSON body posted to the webhook endpoint.
type WebhookPayload struct {
	Decision  *models.AlertDecision `json:"decision"`
	Message   string                `json:"message"`
	EventType string                `json:"event_type"` // pm25_alert or pm25_safe
	Timestamp time.Time             `json:"timestamp"`
	Source    string                `json:"source"` // aerographus
}

// WebhookNotifier posts decisions to an HTTP endpoint. Deliveries run behind
// a token-bucket rate limiter and a circuit breaker so a slow or failing
// receiver cannot back-pressure stream consumption.
type WebhookNotifier struct {
	config  WebhookConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewWebhookNotifier creates the webhook sink. Zero-valued config fields fall
// back to DefaultWebhookConfig.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	defaults := DefaultWebhookConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = defaults.BreakerThreshold
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "webhook-notifier",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
	})

	return &WebhookNotifier{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		breaker: breaker,
	}
}

// Name implements Notifier.
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, decision *models.AlertDecision) error {
	if n.config.URL == "" {
		return nil
	}

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.post(ctx, decision)
	})
	if err != nil {
		metrics.NotificationFailures.WithLabelValues(n.Name()).Inc()
		return err
	}

	metrics.NotificationsSent.WithLabelValues(n.Name()).Inc()
	return nil
}

func (n *WebhookNotifier) post(ctx context.Context, decision *models.AlertDecision) error {
	eventType := "pm25_safe"
	if decision.Fired {
		eventType = "pm25_alert"
	}

	payload := WebhookPayload{
		Decision:  decision,
		Message:   FormatDecision(decision),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    "aerographus",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "aerographus-notifier/1.0")
	for k, v := range n.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort cleanup

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
