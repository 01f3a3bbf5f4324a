// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

type stubStore struct {
	snapshot models.Snapshot
	alerts   []models.AlertDecision
	readings []models.Reading
}

func (s *stubStore) Snapshot() models.Snapshot            { return s.snapshot }
func (s *stubStore) RecentAlerts() []models.AlertDecision { return s.alerts }
func (s *stubStore) RecentReadings() []models.Reading     { return s.readings }
func (s *stubStore) WindowSize() int                      { return 3 }
func (s *stubStore) Threshold() float64                   { return 20.0 }

func (s *stubStore) SensorCount() int {
	return len(s.snapshot.Active) + len(s.snapshot.Inactive)
}

type stubProbe struct {
	name string
	err  error
}

func (p *stubProbe) Name() string { return p.name }
func (p *stubProbe) Ready() error { return p.err }

func testStore() *stubStore {
	active := models.SensorStatus{
		Key:           models.LocationKey{Latitude: 51.956168, Longitude: 7.651169},
		BoxLabel:      "Feinstaub Box",
		LastTimestamp: "2019-01-07T00:00:00",
		LastValue:     38.289267,
		Readings:      5,
		Active:        true,
	}
	inactive := models.SensorStatus{
		Key:           models.LocationKey{Latitude: 48.137154, Longitude: 11.576124},
		BoxLabel:      "Munich Box",
		LastTimestamp: "2019-01-05T00:00:00",
		LastValue:     9.5,
		Readings:      2,
	}
	return &stubStore{
		snapshot: models.Snapshot{
			LatestTimestamp: "2019-01-07T00:00:00",
			Active:          []models.SensorStatus{active},
			Inactive:        []models.SensorStatus{inactive},
		},
		alerts: []models.AlertDecision{
			{BoxLabel: "Feinstaub Box", Mean: 15.228798, Fired: false},
			{BoxLabel: "Feinstaub Box", Mean: 25.88437, Fired: true},
		},
		readings: []models.Reading{
			{BoxLabel: "Feinstaub Box", Value: 26.606711},
			{BoxLabel: "Feinstaub Box", Value: 38.289267},
		},
	}
}

// setupAPI builds the full chi handler over a stub store.
func setupAPI(store SensorStore, probes ...ReadinessProbe) http.Handler {
	handler := NewHandler(store, probes...)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	return NewRouter(handler, nil, mw).SetupChi()
}

// doRequest performs a request and decodes the standard envelope.
func doRequest(t *testing.T, h http.Handler, path string) (int, APIResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not the standard envelope: %v\n%s", err, rec.Body.String())
	}
	return rec.Code, resp
}

func TestSensors(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore())
	code, resp := doRequest(t, h, "/api/v1/sensors")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !resp.Success {
		t.Fatal("expected success envelope")
	}
	if resp.Meta == nil || resp.Meta.Count != 2 {
		t.Errorf("meta count = %+v, want 2", resp.Meta)
	}

	raw, _ := json.Marshal(resp.Data)
	var snapshot models.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("data is not a snapshot: %v", err)
	}
	if len(snapshot.Active) != 1 || len(snapshot.Inactive) != 1 {
		t.Errorf("snapshot partition = %d active / %d inactive, want 1/1", len(snapshot.Active), len(snapshot.Inactive))
	}
	if snapshot.LatestTimestamp != "2019-01-07T00:00:00" {
		t.Errorf("latest timestamp = %q", snapshot.LatestTimestamp)
	}
}

func TestSensorsActive(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore())
	code, resp := doRequest(t, h, "/api/v1/sensors/active")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Meta == nil || resp.Meta.Count != 1 {
		t.Errorf("meta count = %+v, want 1", resp.Meta)
	}
}

func TestAlerts(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore())

	t.Run("all", func(t *testing.T) {
		code, resp := doRequest(t, h, "/api/v1/alerts")
		if code != http.StatusOK || resp.Meta.Count != 2 {
			t.Errorf("status = %d, count = %d; want 200, 2", code, resp.Meta.Count)
		}
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		code, resp := doRequest(t, h, "/api/v1/alerts?limit=1")
		if code != http.StatusOK || resp.Meta.Count != 1 {
			t.Fatalf("status = %d, count = %d; want 200, 1", code, resp.Meta.Count)
		}

		raw, _ := json.Marshal(resp.Data)
		var alerts []models.AlertDecision
		if err := json.Unmarshal(raw, &alerts); err != nil {
			t.Fatalf("data is not an alert list: %v", err)
		}
		if len(alerts) != 1 || !alerts[0].Fired {
			t.Errorf("limit did not keep the newest alert: %+v", alerts)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		code, resp := doRequest(t, h, "/api/v1/alerts?limit=zero")
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
		if resp.Error == nil || resp.Error.Code != ErrCodeBadRequest {
			t.Errorf("error = %+v, want BAD_REQUEST", resp.Error)
		}
	})
}

func TestReadings(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore())
	code, resp := doRequest(t, h, "/api/v1/readings?limit=1")

	if code != http.StatusOK || resp.Meta.Count != 1 {
		t.Errorf("status = %d, count = %d; want 200, 1", code, resp.Meta.Count)
	}
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore())
	code, resp := doRequest(t, h, "/api/v1/health/live")

	if code != http.StatusOK || !resp.Success {
		t.Errorf("status = %d, success = %v; want 200, true", code, resp.Success)
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		h := setupAPI(testStore(), &stubProbe{name: "nats"})
		code, _ := doRequest(t, h, "/api/v1/health/ready")
		if code != http.StatusOK {
			t.Errorf("status = %d, want 200", code)
		}
	})

	t.Run("dependency down", func(t *testing.T) {
		h := setupAPI(testStore(), &stubProbe{name: "nats", err: errors.New("not connected")})
		code, resp := doRequest(t, h, "/api/v1/health/ready")
		if code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", code)
		}
		if resp.Error == nil || resp.Error.Code != ErrCodeServiceUnavailable {
			t.Errorf("error = %+v, want SERVICE_UNAVAILABLE", resp.Error)
		}
	})
}

func TestHealth_DegradedWithFailingProbe(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore(), &stubProbe{name: "nats", err: errors.New("not connected")})
	code, resp := doRequest(t, h, "/api/v1/health")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (full health always reports)", code)
	}

	raw, _ := json.Marshal(resp.Data)
	var status HealthStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		t.Fatalf("data is not HealthStatus: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if status.Dependencies["nats"] != "not connected" {
		t.Errorf("dependencies = %+v", status.Dependencies)
	}
	if status.WindowSize != 3 || status.Threshold != 20.0 {
		t.Errorf("aggregator config = window %d threshold %v", status.WindowSize, status.Threshold)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	t.Parallel()

	h := setupAPI(testStore())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sensors", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
