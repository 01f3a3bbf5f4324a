// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package eventprocessor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/aerographus/internal/aggregator"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// Ingester is the aggregator surface the handler needs. The concrete
// implementation is aggregator.Aggregator; the interface keeps tests light.
type Ingester interface {
	Ingest(r models.Reading) (*models.AlertDecision, error)
}

// DecisionSink receives classified decisions for side effects (log lines,
// webhooks). Implementations must not block indefinitely.
type DecisionSink interface {
	Notify(ctx context.Context, decision *models.AlertDecision) error
	Name() string
}

// Broadcaster pushes decisions to live WebSocket clients. Optional.
type Broadcaster interface {
	BroadcastAlert(decision *models.AlertDecision)
}

// ReadingHandler processes sensor event messages: decode, ingest, notify.
//
// It is designed to sit behind the Router's middleware stack (Recoverer,
// Retry, PoisonQueue). Error handling is deliberately asymmetric:
//   - decode failures ack (return nil) - a malformed message never becomes
//     processable by retrying, and must not advance any sensor's window
//   - warm-up acks silently - an expected non-decision, not a fault
//   - notification failures ack - delivery is fire-and-forget so a broken
//     sink cannot stall consumption; the sink's own breaker/metrics report it
//   - only ingest infrastructure errors (none today) would nack for retry
type ReadingHandler struct {
	ingester  Ingester
	sink      DecisionSink
	broadcast Broadcaster
	logger    watermill.LoggerAdapter

	messagesReceived atomic.Int64
	decisionsMade    atomic.Int64
	decodeFailures   atomic.Int64
	lastMessageNano  atomic.Int64
}

// NewReadingHandler creates a handler. broadcast may be nil; ingester and
// sink are required.
func NewReadingHandler(ingester Ingester, sink DecisionSink, broadcast Broadcaster, logger watermill.LoggerAdapter) (*ReadingHandler, error) {
	if ingester == nil {
		return nil, ErrNilAggregator
	}
	if sink == nil {
		return nil, ErrNilNotifier
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	return &ReadingHandler{
		ingester:  ingester,
		sink:      sink,
		broadcast: broadcast,
		logger:    logger,
	}, nil
}

// Handle processes a single sensor event message. This is the handler
// function registered on the Router.
func (h *ReadingHandler) Handle(msg *message.Message) error {
	now := time.Now()
	h.messagesReceived.Add(1)
	h.lastMessageNano.Store(now.UnixNano())
	metrics.ConsumerLastMessage.Set(float64(now.Unix()))

	reading, err := ParseSensorEvent(msg.Payload)
	if err != nil {
		h.decodeFailures.Add(1)
		metrics.ConsumerMessages.WithLabelValues("dropped").Inc()

		var de *DecodeError
		reason := "unknown"
		if errors.As(err, &de) {
			reason = de.Reason
		}
		metrics.DecodeErrors.WithLabelValues(reason).Inc()

		h.logger.Error("Dropping undecodable sensor event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
		})
		// Ack: a malformed message can never become valid by redelivery.
		return nil
	}

	decision, err := h.ingester.Ingest(*reading)
	if errors.Is(err, aggregator.ErrWarmupPending) {
		metrics.ConsumerMessages.WithLabelValues("warmup").Inc()
		return nil
	}
	if err != nil {
		// Not produced by the in-memory aggregator today, but a future
		// persistent implementation may fail transiently: let Retry decide.
		return err
	}

	h.decisionsMade.Add(1)
	metrics.ConsumerMessages.WithLabelValues("processed").Inc()

	ctx := context.Background()
	if msgCtx := msg.Context(); msgCtx != nil {
		ctx = msgCtx
	}

	if err := h.sink.Notify(ctx, decision); err != nil {
		h.logger.Error("Notification delivery failed", err, watermill.LogFields{
			"sink":    h.sink.Name(),
			"box":     decision.BoxLabel,
			"fired":   decision.Fired,
			"message": msg.UUID,
		})
		// Ack anyway: the reading is already aggregated, and redelivering
		// it would corrupt the window.
	}

	if h.broadcast != nil {
		h.broadcast.BroadcastAlert(decision)
	}

	return nil
}

// Stats returns handler counters for health reporting.
func (h *ReadingHandler) Stats() (received, decisions, decodeFailures int64, lastMessage time.Time) {
	if nano := h.lastMessageNano.Load(); nano > 0 {
		lastMessage = time.Unix(0, nano)
	}
	return h.messagesReceived.Load(), h.decisionsMade.Load(), h.decodeFailures.Load(), lastMessage
}
