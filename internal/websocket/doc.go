// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package websocket fans alert decisions and sensor snapshots out to
// connected browser clients in real time.
//
// The Hub owns the client set and runs as a supervised service
// (RunWithContext). The event handler pushes decisions into the hub via
// BroadcastAlert; the API layer upgrades /api/v1/ws requests into Clients.
// Broadcasts never block producers: a client that cannot keep up is
// disconnected rather than allowed to back-pressure stream consumption.
package websocket
