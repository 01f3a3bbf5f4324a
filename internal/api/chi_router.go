// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/aerographus/internal/middleware"
)

// Router assembles the HTTP surface: REST endpoints, the WebSocket upgrade
// and the Prometheus scrape endpoint.
type Router struct {
	handler       *Handler
	wsHandler     *WebSocketHandler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. wsHandler may be nil, in which case the /ws
// route is not registered.
func NewRouter(handler *Handler, wsHandler *WebSocketHandler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		wsHandler:     wsHandler,
		chiMiddleware: mw,
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)        // X-Request-ID plus logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(chimiddleware.Compress(5, "application/json", "text/html"))

	// Health endpoints: permissive rate limit so monitors can poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Core API endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/sensors", router.handler.Sensors)
		r.Get("/sensors/active", router.handler.SensorsActive)
		r.Get("/alerts", router.handler.Alerts)
		r.Get("/readings", router.handler.Readings)

		if router.wsHandler != nil {
			r.Get("/ws", router.wsHandler.ServeHTTP)
		}
	})

	// Prometheus scrape endpoint, outside the API rate limit.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
