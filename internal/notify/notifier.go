// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package notify delivers alert decisions to notification sinks.
package notify

import (
	"context"
	"fmt"

	"github.com/tomtom215/aerographus/internal/models"
)

// Notifier is a notification sink for alert decisions. Implementations must
// be safe for concurrent use; delivery failures are the sink's own concern
// and never block or corrupt stream consumption.
type Notifier interface {
	// Notify delivers one decision. The context bounds delivery time.
	Notify(ctx context.Context, decision *models.AlertDecision) error

	// Name identifies the sink in logs and metrics.
	Name() string
}

// FormatDecision renders the human-readable notification line.
//
// The exact wording is a compatibility contract with downstream consumers
// that scrape these lines (including the "3-Day Average" phrasing and the
// two-decimal mean):
//
//	{box} : {timestamp} : Message Received PM 2.5 Levels are safe
//	{box} : {timestamp} : !!! WARNING !!! PM 2.5 threshold exceeded with 3-Day Average of {mean}
func FormatDecision(d *models.AlertDecision) string {
	if d.Fired {
		return fmt.Sprintf("%s : %s : !!! WARNING !!! PM 2.5 threshold exceeded with 3-Day Average of %.2f",
			d.BoxLabel, d.Timestamp, d.Mean)
	}
	return fmt.Sprintf("%s : %s : Message Received PM 2.5 Levels are safe", d.BoxLabel, d.Timestamp)
}

// Multi fans a decision out to several sinks. Delivery is attempted on every
// sink regardless of earlier failures; the first error is returned.
type Multi struct {
	sinks []Notifier
}

// NewMulti creates a fanout notifier over the given sinks.
func NewMulti(sinks ...Notifier) *Multi {
	return &Multi{sinks: sinks}
}

// Name implements Notifier.
func (m *Multi) Name() string {
	return "multi"
}

// Notify implements Notifier.
func (m *Multi) Notify(ctx context.Context, decision *models.AlertDecision) error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Notify(ctx, decision); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", sink.Name(), err)
		}
	}
	return firstErr
}
