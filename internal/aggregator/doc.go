// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package aggregator implements per-sensor rolling-window aggregation with
// threshold alerting.
//
// Each sensor location owns a fixed-size ring buffer of its most recent PM2.5
// values in arrival order. A sensor starts in warm-up: until the window is
// full, Ingest returns ErrWarmupPending and no notification is produced.
// Once full (a one-way transition), every subsequent ingest yields an
// AlertDecision whose Fired flag is the strict comparison mean > threshold.
//
// Memory is bounded by design: only the trailing window plus small per-sensor
// metadata is retained per location, and the recent-activity rings feeding
// the HTTP API have fixed capacities.
package aggregator
