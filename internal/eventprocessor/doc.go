// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package eventprocessor consumes PM2.5 sensor events from NATS JetStream.
//
// The pipeline is built on Watermill: a durable JetStream subscriber feeds a
// Router whose middleware stack provides panic recovery, exponential-backoff
// retry and poison-queue routing. The single registered handler decodes each
// message, feeds it to the rolling-window aggregator, and forwards any
// resulting decision to the notification sinks and the WebSocket hub.
//
// Per-message errors are isolated: an undecodable message is counted, logged
// and acked so it can never block the stream, and a decode failure never
// advances any sensor's window. Only infrastructure failures (broker
// connectivity, subscription loss) propagate to the supervisor.
//
// An optional embedded NATS server makes single-binary deployments and
// capture replays self-contained.
package eventprocessor
