// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package api exposes the read-side HTTP surface over the aggregator:
// sensor snapshots, recent alerts and readings, health probes, the
// WebSocket upgrade for live updates and the Prometheus scrape endpoint.
//
// Routing uses Chi with ecosystem middleware (go-chi/cors, go-chi/httprate)
// rather than hand-rolled equivalents. All JSON responses share the
// APIResponse envelope.
package api

// Version is reported by the health endpoint.
const Version = "1.0.0"
