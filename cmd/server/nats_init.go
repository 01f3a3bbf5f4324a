// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tomtom215/aerographus/internal/aggregator"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/eventprocessor"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/notify"
	"github.com/tomtom215/aerographus/internal/websocket"
)

// messagingStack bundles everything the supervisor's messaging layer runs.
type messagingStack struct {
	embedded   *eventprocessor.EmbeddedServer // nil with an external broker
	nc         *nats.Conn
	publisher  *eventprocessor.Publisher
	subscriber *eventprocessor.Subscriber
	router     *eventprocessor.Router
	consumer   *eventprocessor.ConsumerService
}

// initMessaging provisions the broker, stream and consumer pipeline:
// embedded NATS (or external connection), JetStream stream, poison-queue
// publisher, durable subscriber, router with the reading handler, and the
// consumer service with the idle watchdog.
func initMessaging(cfg *config.Config, agg *aggregator.Aggregator, sink notify.Notifier, hub *websocket.Hub) (*messagingStack, error) {
	wmLogger := logging.NewWatermillAdapter()
	stack := &messagingStack{}

	url := cfg.NATS.URL
	if cfg.NATS.EmbeddedServer {
		embedded, err := eventprocessor.NewEmbeddedServer(&eventprocessor.ServerConfig{
			Host:              "127.0.0.1",
			Port:              -1, // random free port; clients use ClientURL
			StoreDir:          cfg.NATS.StoreDir,
			JetStreamMaxMem:   cfg.NATS.MaxMemory,
			JetStreamMaxStore: cfg.NATS.MaxStore,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		stack.embedded = embedded
		url = embedded.ClientURL()
		logging.Info().Str("url", url).Msg("embedded NATS server started")
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		stack.close()
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	stack.nc = nc

	streamCfg := eventprocessor.DefaultStreamConfig()
	streamCfg.Name = cfg.NATS.StreamName
	streamCfg.Subjects = []string{cfg.NATS.Subject, cfg.Consumer.PoisonQueueTopic}
	streamCfg.MaxAge = time.Duration(cfg.NATS.StreamRetentionDays) * 24 * time.Hour

	streamMgr, err := eventprocessor.NewStreamManager(nc, &streamCfg)
	if err != nil {
		stack.close()
		return nil, fmt.Errorf("create stream manager: %w", err)
	}

	ensureCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := streamMgr.EnsureStream(ensureCtx); err != nil {
		stack.close()
		return nil, fmt.Errorf("ensure stream %s: %w", streamCfg.Name, err)
	}

	pubCfg := eventprocessor.DefaultPublisherConfig()
	pubCfg.URL = url
	publisher, err := eventprocessor.NewPublisher(pubCfg, wmLogger)
	if err != nil {
		stack.close()
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	stack.publisher = publisher

	subCfg := eventprocessor.DefaultSubscriberConfig()
	subCfg.URL = url
	subCfg.StreamName = cfg.NATS.StreamName
	subCfg.DurableName = cfg.NATS.DurableName
	subCfg.QueueGroup = cfg.NATS.QueueGroup
	subCfg.SubscribersCount = cfg.NATS.SubscribersCount
	subscriber, err := eventprocessor.NewSubscriber(&subCfg, wmLogger)
	if err != nil {
		stack.close()
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	stack.subscriber = subscriber

	handler, err := eventprocessor.NewReadingHandler(agg, sink, hub, wmLogger)
	if err != nil {
		stack.close()
		return nil, fmt.Errorf("create reading handler: %w", err)
	}

	routerCfg := eventprocessor.DefaultRouterConfig()
	routerCfg.CloseTimeout = cfg.Consumer.CloseTimeout
	routerCfg.RetryMaxRetries = cfg.Consumer.RetryCount
	routerCfg.RetryInitialInterval = cfg.Consumer.RetryInitialInterval
	if cfg.Consumer.PoisonQueueEnabled {
		routerCfg.PoisonQueueTopic = cfg.Consumer.PoisonQueueTopic
	} else {
		routerCfg.PoisonQueueTopic = ""
	}

	router, err := eventprocessor.NewRouter(&routerCfg, publisher.Messages(), wmLogger)
	if err != nil {
		stack.close()
		return nil, fmt.Errorf("create router: %w", err)
	}
	router.AddHandler("pm25-readings", cfg.NATS.Subject, subscriber.Messages(), handler.Handle)
	stack.router = router

	consumer, err := eventprocessor.NewConsumerService(router, handler, eventprocessor.ConsumerConfig{
		IdleTimeout:  cfg.Consumer.IdleTimeout,
		IdleShutdown: cfg.Consumer.IdleShutdown,
	}, wmLogger)
	if err != nil {
		stack.close()
		return nil, fmt.Errorf("create consumer service: %w", err)
	}
	stack.consumer = consumer

	return stack, nil
}

// close tears down whatever was initialized, in reverse order. Used on init
// failure; in normal operation the supervisor owns shutdown.
func (s *messagingStack) close() {
	if s.subscriber != nil {
		_ = s.subscriber.Close()
	}
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.nc != nil {
		s.nc.Close()
	}
	if s.embedded != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.embedded.Shutdown(ctx)
	}
}

// natsProbe reports broker readiness for the health endpoints.
type natsProbe struct {
	stack *messagingStack
}

func (p *natsProbe) Name() string { return "nats" }

func (p *natsProbe) Ready() error {
	if p.stack.embedded != nil && !p.stack.embedded.IsRunning() {
		return errors.New("embedded server not running")
	}
	if status := p.stack.nc.Status(); status != nats.CONNECTED {
		return fmt.Errorf("connection status %s", status)
	}
	return nil
}
