// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package notify

import (
	"context"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// LogNotifier writes notification lines to the structured log. It is the
// default sink and never fails.
type LogNotifier struct{}

// NewLogNotifier creates the log sink.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Name implements Notifier.
func (n *LogNotifier) Name() string {
	return "log"
}

// Notify implements Notifier. Alerts log at warn level, safe readings at info.
func (n *LogNotifier) Notify(_ context.Context, decision *models.AlertDecision) error {
	event := logging.Info()
	if decision.Fired {
		event = logging.Warn()
	}

	event.
		Str("box", decision.BoxLabel).
		Str("timestamp", decision.Timestamp).
		Float64("mean", decision.Mean).
		Bool("fired", decision.Fired).
		Msg(FormatDecision(decision))

	metrics.NotificationsSent.WithLabelValues(n.Name()).Inc()
	return nil
}
