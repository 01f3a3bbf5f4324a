// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"time"
)

var startTime = time.Now()

// HealthStatus is the payload of the full health endpoint.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Sensors       int               `json:"sensors"`
	WindowSize    int               `json:"window_size"`
	Threshold     float64           `json:"threshold"`
	Dependencies  map[string]string `json:"dependencies"`
}

// Health returns comprehensive health status: dependency readiness plus the
// aggregator's high-level counters.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	deps := make(map[string]string, len(h.probes))
	status := "healthy"
	for _, probe := range h.probes {
		if err := probe.Ready(); err != nil {
			deps[probe.Name()] = err.Error()
			status = "degraded"
		} else {
			deps[probe.Name()] = "ok"
		}
	}

	rw.Success(HealthStatus{
		Status:        status,
		Version:       Version,
		UptimeSeconds: time.Since(startTime).Seconds(),
		Sensors:       h.store.SensorCount(),
		WindowSize:    h.store.WindowSize(),
		Threshold:     h.store.Threshold(),
		Dependencies:  deps,
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only when every registered dependency probe passes, 503
// otherwise so orchestrators hold traffic until the stream pipeline is up.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	for _, probe := range h.probes {
		if err := probe.Ready(); err != nil {
			rw.ServiceUnavailable(probe.Name() + ": " + err.Error())
			return
		}
	}

	rw.Success(map[string]interface{}{"ready": true})
}
