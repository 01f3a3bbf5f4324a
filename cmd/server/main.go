// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/aerographus/internal/aggregator"
	"github.com/tomtom215/aerographus/internal/api"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/eventprocessor"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/notify"
	"github.com/tomtom215/aerographus/internal/supervisor"
	"github.com/tomtom215/aerographus/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", api.Version).
		Int("window_size", cfg.Aggregator.WindowSize).
		Float64("threshold", cfg.Aggregator.Threshold).
		Msg("Starting Aerographus")

	agg, err := aggregator.New(aggregator.Config{
		WindowSize:     cfg.Aggregator.WindowSize,
		Threshold:      cfg.Aggregator.Threshold,
		RecentAlerts:   cfg.Aggregator.RecentAlerts,
		RecentReadings: cfg.Aggregator.RecentReadings,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create aggregator")
	}

	// The log sink always runs; the webhook sink joins when configured.
	sinks := []notify.Notifier{notify.NewLogNotifier()}
	if cfg.Notify.WebhookURL != "" {
		webhookCfg := notify.DefaultWebhookConfig()
		webhookCfg.URL = cfg.Notify.WebhookURL
		webhookCfg.Timeout = cfg.Notify.WebhookTimeout
		webhookCfg.RatePerSecond = cfg.Notify.WebhookRatePerSecond
		webhookCfg.RateBurst = cfg.Notify.WebhookRateBurst
		sinks = append(sinks, notify.NewWebhookNotifier(webhookCfg))
		logging.Info().Str("url", cfg.Notify.WebhookURL).Msg("Webhook notifications enabled")
	}
	sink := notify.NewMulti(sinks...)

	hub := websocket.NewHub()

	stack, err := initMessaging(cfg, agg, sink, hub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize messaging stack")
	}

	handler := api.NewHandler(agg, &natsProbe{stack: stack})
	wsHandler := api.NewWebSocketHandler(hub, agg, cfg.Server.CORSOrigins)
	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	})
	apiRouter := api.NewRouter(handler, wsHandler, mw)

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.Timeout
	httpServer := api.NewServer(serverCfg, apiRouter.SetupChi())

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if stack.embedded != nil {
		tree.AddMessagingService(stack.embedded)
	}
	// ErrIdleTimeout retires the consumer instead of restarting it against a
	// drained stream; the HTTP surface keeps serving aggregated results.
	tree.AddMessagingService(supervisor.NewTerminalService(stack.consumer, "event-consumer", eventprocessor.ErrIdleTimeout))
	tree.AddMessagingService(supervisor.NewHubService(hub))
	tree.AddAPIService(httpServer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", httpServer.Addr()).Msg("Supervision tree starting")
	err = tree.Serve(ctx)
	stop()

	stack.close()

	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervision tree stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Shutdown complete")
}
