// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

/*
Package supervisor builds the suture/v4 supervision tree for the process.

Layout:

	aerographus (root)
	├── messaging-layer
	│   ├── nats-server     (embedded JetStream)
	│   ├── event-consumer  (router + idle watchdog)
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Services implement suture.Service (Serve(ctx) error plus fmt.Stringer).
Crashes restart with exponential backoff within their layer only, so a
failing consumer never takes the HTTP surface down. Lifecycle events are
logged through sutureslog bridged into zerolog.

TerminalService exists for errors that mean "done", not "broken": the
consumer's idle shutdown returns eventprocessor.ErrIdleTimeout, which the
wrapper converts into a retirement instead of a restart loop.
*/
package supervisor
