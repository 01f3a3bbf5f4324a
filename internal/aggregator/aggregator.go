// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package aggregator

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// ErrWarmupPending is returned by Ingest while a sensor's window holds fewer
// than WindowSize values. It is an expected non-decision state, not a fault:
// callers must branch on it with errors.Is and continue consuming.
var ErrWarmupPending = errors.New("rolling window warming up")

// ErrInvalidWindowSize is returned by New when WindowSize < 1.
var ErrInvalidWindowSize = errors.New("window size must be at least 1")

// Config holds aggregator tuning parameters.
type Config struct {
	// WindowSize is the number of most recent values per sensor that feed
	// the rolling mean. Must be >= 1.
	WindowSize int

	// Threshold is the PM2.5 level above which (strictly) an alert fires.
	Threshold float64

	// RecentAlerts bounds the ring of decisions kept for the API.
	RecentAlerts int

	// RecentReadings bounds the ring of raw readings kept for the API.
	RecentReadings int
}

// DefaultConfig returns the reference tuning: a 3-reading window evaluated
// against a 20.0 µg/m³ threshold.
func DefaultConfig() Config {
	return Config{
		WindowSize:     3,
		Threshold:      20.0,
		RecentAlerts:   256,
		RecentReadings: 1024,
	}
}

// sensorState is the bounded per-sensor record. Only the trailing window and
// presentation metadata are retained; the full reading history is not.
type sensorState struct {
	window        *Window
	label         string
	lastTimestamp string
	lastValue     float64
	readings      int64
	lastMean      float64
	hasMean       bool
	lastFired     bool
}

// Aggregator maintains per-sensor rolling windows and classifies each newly
// arrived reading against the configured threshold.
//
// Windowing is by arrival order, not timestamp order: two readings for the
// same sensor must be ingested in the order they were delivered for the mean
// to be reproducible against captured streams. The driver consumes one
// message at a time, so there is a single writer; the mutex exists so the
// HTTP snapshot path can read concurrently.
type Aggregator struct {
	mu      sync.RWMutex
	cfg     Config
	sensors map[models.LocationKey]*sensorState

	recentAlerts   *decisionRing
	recentReadings *readingRing
}

// New creates an aggregator. WindowSize < 1 is rejected with
// ErrInvalidWindowSize; zero-valued ring capacities fall back to defaults.
func New(cfg Config) (*Aggregator, error) {
	if cfg.WindowSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindowSize, cfg.WindowSize)
	}
	if cfg.RecentAlerts <= 0 {
		cfg.RecentAlerts = DefaultConfig().RecentAlerts
	}
	if cfg.RecentReadings <= 0 {
		cfg.RecentReadings = DefaultConfig().RecentReadings
	}

	return &Aggregator{
		cfg:            cfg,
		sensors:        make(map[models.LocationKey]*sensorState),
		recentAlerts:   newDecisionRing(cfg.RecentAlerts),
		recentReadings: newReadingRing(cfg.RecentReadings),
	}, nil
}

// Ingest appends a reading to its sensor's window and evaluates the rolling
// mean.
//
// Before WindowSize values have arrived for the sensor it returns
// (nil, ErrWarmupPending). Once the window is full it returns a decision
// with Mean over exactly the most recent WindowSize values in arrival order
// and Fired = mean > threshold (strict).
//
// Ingest never deduplicates: re-ingesting an identical reading grows the
// window like any other value. Deduplication, if wanted, belongs to the
// stream source's acknowledgment layer.
func (a *Aggregator) Ingest(r models.Reading) (*models.AlertDecision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, ok := a.sensors[r.Key]
	if !ok {
		state = &sensorState{window: NewWindow(a.cfg.WindowSize)}
		a.sensors[r.Key] = state
		metrics.KnownSensors.Set(float64(len(a.sensors)))
	}

	state.window.Push(r.Value)
	state.label = r.BoxLabel
	state.lastTimestamp = r.Timestamp
	state.lastValue = r.Value
	state.readings++

	a.recentReadings.push(r)
	metrics.ReadingsIngested.Inc()

	if !state.window.Full() {
		metrics.WarmupSkips.Inc()
		return nil, ErrWarmupPending
	}

	mean := state.window.Mean()
	decision := &models.AlertDecision{
		Key:       r.Key,
		Timestamp: r.Timestamp,
		BoxLabel:  r.BoxLabel,
		Mean:      mean,
		Fired:     mean > a.cfg.Threshold,
	}

	state.lastMean = mean
	state.hasMean = true
	state.lastFired = decision.Fired

	a.recentAlerts.push(*decision)
	metrics.RecordEvaluation(decision.Fired)

	return decision, nil
}

// Snapshot partitions known sensors into active and inactive for map
// rendering. A sensor is active when its latest timestamp equals the newest
// timestamp observed across all sensors; ISO-8601 strings in a consistent
// format order lexicographically, so no parsing is needed.
func (a *Aggregator) Snapshot() models.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	latest := ""
	for _, s := range a.sensors {
		if s.lastTimestamp > latest {
			latest = s.lastTimestamp
		}
	}

	snap := models.Snapshot{
		GeneratedAt:     time.Now().UTC(),
		LatestTimestamp: latest,
	}

	for key, s := range a.sensors {
		status := models.SensorStatus{
			Key:           key,
			BoxLabel:      s.label,
			LastTimestamp: s.lastTimestamp,
			LastValue:     s.lastValue,
			Readings:      s.readings,
			LastMean:      s.lastMean,
			HasMean:       s.hasMean,
			LastFired:     s.lastFired,
			Active:        s.lastTimestamp == latest && latest != "",
		}
		if status.Active {
			snap.Active = append(snap.Active, status)
		} else {
			snap.Inactive = append(snap.Inactive, status)
		}
	}

	// Map iteration order is random; sort for stable API responses.
	sortStatuses(snap.Active)
	sortStatuses(snap.Inactive)

	metrics.ActiveSensors.Set(float64(len(snap.Active)))

	return snap
}

func sortStatuses(statuses []models.SensorStatus) {
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Key.Latitude != statuses[j].Key.Latitude {
			return statuses[i].Key.Latitude < statuses[j].Key.Latitude
		}
		return statuses[i].Key.Longitude < statuses[j].Key.Longitude
	})
}

// RecentAlerts returns the bounded ring of decisions, oldest first.
func (a *Aggregator) RecentAlerts() []models.AlertDecision {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.recentAlerts.slice()
}

// RecentReadings returns the bounded ring of raw readings, oldest first.
func (a *Aggregator) RecentReadings() []models.Reading {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.recentReadings.slice()
}

// SensorCount returns the number of distinct sensor locations observed.
func (a *Aggregator) SensorCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.sensors)
}

// WindowSize returns the configured rolling window size.
func (a *Aggregator) WindowSize() int {
	return a.cfg.WindowSize
}

// Threshold returns the configured alert threshold.
func (a *Aggregator) Threshold() float64 {
	return a.cfg.Threshold
}
