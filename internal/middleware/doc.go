// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

/*
Package middleware provides HTTP middleware components for the API layer.

This package implements request ID tracking and Prometheus metrics
instrumentation. CORS and rate limiting come from the Chi ecosystem and are
configured in the api package; gzip compression is chi's Compress middleware.
*/
package middleware
