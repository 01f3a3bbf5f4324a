// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aerographus/internal/models"
)

func alertDecision() *models.AlertDecision {
	return &models.AlertDecision{
		Key:       models.LocationKey{Latitude: 51.956168, Longitude: 7.651169},
		Timestamp: "2019-01-07T00:00:00",
		BoxLabel:  "Feinstaub Box",
		Mean:      25.884370,
		Fired:     true,
	}
}

func TestWebhookNotifier_PostsPayload(t *testing.T) {
	var received WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL})
	if err := n.Notify(context.Background(), alertDecision()); err != nil {
		t.Fatalf("Notify() failed: %v", err)
	}

	if received.EventType != "pm25_alert" {
		t.Errorf("event_type = %q, want pm25_alert", received.EventType)
	}
	if received.Source != "aerographus" {
		t.Errorf("source = %q, want aerographus", received.Source)
	}
	if !strings.Contains(received.Message, "!!! WARNING !!!") {
		t.Errorf("message = %q, want warning line", received.Message)
	}
	if received.Decision == nil || received.Decision.Key.Latitude != 51.956168 {
		t.Errorf("decision = %+v, want original decision", received.Decision)
	}
}

func TestWebhookNotifier_CustomHeaders(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{
		URL:     srv.URL,
		Headers: map[string]string{"Authorization": "Bearer token"},
	})
	if err := n.Notify(context.Background(), alertDecision()); err != nil {
		t.Fatalf("Notify() failed: %v", err)
	}
	if auth != "Bearer token" {
		t.Errorf("Authorization = %q, want custom header forwarded", auth)
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL})
	if err := n.Notify(context.Background(), alertDecision()); err == nil {
		t.Fatal("Notify() = nil, want error for 502 response")
	}
}

func TestWebhookNotifier_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL, BreakerThreshold: 2})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := n.Notify(ctx, alertDecision()); err == nil {
			t.Fatalf("Notify() %d = nil, want error", i)
		}
	}

	// After two consecutive failures the breaker is open and later calls
	// fail fast without reaching the endpoint.
	if got := hits.Load(); got != 2 {
		t.Errorf("endpoint hits = %d, want 2 (breaker should short-circuit)", got)
	}
}

func TestWebhookNotifier_EmptyURLIsNoop(t *testing.T) {
	n := NewWebhookNotifier(WebhookConfig{})
	if err := n.Notify(context.Background(), alertDecision()); err != nil {
		t.Fatalf("Notify() with no URL = %v, want nil", err)
	}
}
