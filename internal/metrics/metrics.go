// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the ingestion pipeline:
// - Stream consumption (readings, decode failures, idle shutdowns)
// - Rolling-window aggregation (warm-up skips, alerts)
// - Notification delivery
// - API endpoint latency and throughput

var (
	// Ingestion Metrics
	ReadingsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aero_readings_ingested_total",
			Help: "Total number of readings appended to sensor windows",
		},
	)

	DecodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aero_decode_errors_total",
			Help: "Total number of stream messages dropped as undecodable",
		},
		[]string{"reason"},
	)

	WarmupSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aero_warmup_skips_total",
			Help: "Total number of ingests that returned no decision during window warm-up",
		},
	)

	AlertsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aero_alerts_evaluated_total",
			Help: "Total number of rolling-window evaluations by outcome",
		},
		[]string{"fired"}, // "true", "false"
	)

	KnownSensors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aero_known_sensors",
			Help: "Number of distinct sensor locations observed since startup",
		},
	)

	ActiveSensors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aero_active_sensors",
			Help: "Number of sensors reporting at the newest observed timestamp",
		},
	)

	// Consumer Metrics
	ConsumerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aero_consumer_messages_total",
			Help: "Total number of stream messages by handling outcome",
		},
		[]string{"outcome"}, // "processed", "dropped", "warmup"
	)

	ConsumerIdleShutdowns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aero_consumer_idle_shutdowns_total",
			Help: "Total number of consumer shutdowns triggered by the idle timeout",
		},
	)

	ConsumerLastMessage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aero_consumer_last_message_timestamp",
			Help: "Unix timestamp of the last message pulled from the stream",
		},
	)

	// Notification Metrics
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aero_notifications_sent_total",
			Help: "Total number of notifications delivered per sink",
		},
		[]string{"sink"},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aero_notification_failures_total",
			Help: "Total number of notification delivery failures per sink",
		},
		[]string{"sink"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aero_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aero_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aero_websocket_connections",
			Help: "Current number of connected WebSocket clients",
		},
	)
)

// RecordAPIRequest records an API request with its duration and status.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordEvaluation records a rolling-window evaluation outcome.
func RecordEvaluation(fired bool) {
	AlertsEvaluated.WithLabelValues(strconv.FormatBool(fired)).Inc()
}
