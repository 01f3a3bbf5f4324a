// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Command server runs the Aerographus daemon: an embedded (or external)
// NATS JetStream broker, the PM2.5 rolling-window consumer pipeline, the
// websocket alert hub and the HTTP API, all under a suture supervision tree.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (CONFIG_PATH or ./config.yaml), then AERO_* environment variables.
package main
