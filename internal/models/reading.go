// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package models defines the canonical data types shared across the
// ingestion, aggregation and presentation layers.
package models

import (
	"fmt"
	"time"
)

// LocationKey identifies a sensor by its exact coordinates.
//
// Keys are compared by exact float equality, never by proximity. Two boxes
// reporting from coordinates that differ in the last decimal place are two
// distinct sensors. The struct is comparable and safe to use as a map key.
type LocationKey struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String returns a compact "lat,lon" representation for logs and metrics labels.
func (k LocationKey) String() string {
	return fmt.Sprintf("%g,%g", k.Latitude, k.Longitude)
}

// Reading is a single decoded PM2.5 measurement.
//
// Readings are immutable once created. The timestamp is carried verbatim as
// the ISO-8601 string delivered on the wire; it is never reformatted, so
// replayed historical captures compare byte-for-byte.
type Reading struct {
	Key       LocationKey `json:"key"`
	Timestamp string      `json:"timestamp"` // ISO-8601, as delivered
	BoxLabel  string      `json:"box_label"` // display label only, not part of the key
	Value     float64     `json:"value"`     // PM2.5 in µg/m³
}

// AlertDecision is the aggregator's classification of a reading once its
// sensor's rolling window is full. It is derived state, produced per ingest
// and handed to notification sinks; only a bounded recent ring is retained.
type AlertDecision struct {
	Key       LocationKey `json:"key"`
	Timestamp string      `json:"timestamp"`
	BoxLabel  string      `json:"box_label"`
	Mean      float64     `json:"mean"`
	Fired     bool        `json:"fired"`
}

// SensorStatus is the per-sensor projection used by the presentation layer.
type SensorStatus struct {
	Key           LocationKey `json:"key"`
	BoxLabel      string      `json:"box_label"`
	LastTimestamp string      `json:"last_timestamp"`
	LastValue     float64     `json:"last_value"`
	Readings      int64       `json:"readings"`
	LastMean      float64     `json:"last_mean,omitempty"`
	HasMean       bool        `json:"has_mean"`
	LastFired     bool        `json:"last_fired"`
	Active        bool        `json:"active"`
}

// Snapshot is a point-in-time projection of aggregator state for map
// rendering. A sensor is active when its latest reading carries the newest
// timestamp observed across all sensors; everything else is inactive.
type Snapshot struct {
	GeneratedAt     time.Time      `json:"generated_at"`
	LatestTimestamp string         `json:"latest_timestamp"`
	Active          []SensorStatus `json:"active"`
	Inactive        []SensorStatus `json:"inactive"`
}
