// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package metrics provides Prometheus instrumentation for Aerographus.
//
// All metrics are registered at package load via promauto and exposed on the
// HTTP API's /metrics endpoint. Metric names carry the "aero_" prefix.
package metrics
