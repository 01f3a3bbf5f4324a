// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/aerographus/internal/models"
)

// SensorStore is the aggregator surface the API reads from. The concrete
// implementation is aggregator.Aggregator.
type SensorStore interface {
	Snapshot() models.Snapshot
	RecentAlerts() []models.AlertDecision
	RecentReadings() []models.Reading
	SensorCount() int
	WindowSize() int
	Threshold() float64
}

// ReadinessProbe reports whether a named dependency is ready to serve.
type ReadinessProbe interface {
	Name() string
	Ready() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store  SensorStore
	probes []ReadinessProbe
}

// NewHandler creates a handler backed by the given sensor store. probes are
// consulted by the readiness endpoint; nil entries are skipped.
func NewHandler(store SensorStore, probes ...ReadinessProbe) *Handler {
	filtered := make([]ReadinessProbe, 0, len(probes))
	for _, p := range probes {
		if p != nil {
			filtered = append(filtered, p)
		}
	}
	return &Handler{store: store, probes: filtered}
}

// Sensors returns the full snapshot: active and inactive sensors partitioned
// by the latest timestamp seen on the stream.
func (h *Handler) Sensors(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snapshot := h.store.Snapshot()
	rw.SuccessWithCount(snapshot, len(snapshot.Active)+len(snapshot.Inactive))
}

// SensorsActive returns only the sensors reporting at the stream's latest
// timestamp.
func (h *Handler) SensorsActive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snapshot := h.store.Snapshot()
	rw.SuccessWithCount(snapshot.Active, len(snapshot.Active))
}

// Alerts returns the most recent alert decisions, newest last. The optional
// limit query parameter truncates to the newest N.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	alerts := h.store.RecentAlerts()
	alerts, ok := applyLimit(r, alerts)
	if !ok {
		rw.BadRequest("limit must be a positive integer")
		return
	}
	rw.SuccessWithCount(alerts, len(alerts))
}

// Readings returns the most recent raw readings, newest last. The optional
// limit query parameter truncates to the newest N.
func (h *Handler) Readings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	readings := h.store.RecentReadings()
	readings, ok := applyLimit(r, readings)
	if !ok {
		rw.BadRequest("limit must be a positive integer")
		return
	}
	rw.SuccessWithCount(readings, len(readings))
}

// applyLimit truncates items to the newest N per the request's limit query
// parameter. Returns false when the parameter is present but invalid.
func applyLimit[T any](r *http.Request, items []T) ([]T, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return items, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return nil, false
	}
	if limit < len(items) {
		items = items[len(items)-limit:]
	}
	return items, true
}
