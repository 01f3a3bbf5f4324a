// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package eventprocessor

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/aerographus/internal/metrics"
)

// ConsumerConfig controls the consumer service's liveness behavior.
type ConsumerConfig struct {
	// IdleTimeout is how long the consumer waits without receiving any
	// message before declaring the stream idle.
	IdleTimeout time.Duration

	// IdleShutdown stops the service with ErrIdleTimeout when the stream
	// goes idle. Used for bounded capture replays; a long-running service
	// leaves it off and merely logs idleness.
	IdleShutdown bool

	// WatchdogInterval is how often idleness is checked. Zero means
	// IdleTimeout/4, floored at one second.
	WatchdogInterval time.Duration
}

// DefaultConsumerConfig matches service mode: idleness observed and logged
// after 10s of silence, but consumption continues.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		IdleTimeout:  10 * time.Second,
		IdleShutdown: false,
	}
}

func (c ConsumerConfig) watchdogInterval() time.Duration {
	if c.WatchdogInterval > 0 {
		return c.WatchdogInterval
	}
	interval := c.IdleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// ConsumerService runs the message router and watches stream liveness.
// It implements suture.Service.
type ConsumerService struct {
	router  *Router
	handler *ReadingHandler
	cfg     ConsumerConfig
	logger  watermill.LoggerAdapter
}

// NewConsumerService creates a consumer service around an already-wired
// router and its handler.
func NewConsumerService(router *Router, handler *ReadingHandler, cfg ConsumerConfig, logger watermill.LoggerAdapter) (*ConsumerService, error) {
	if router == nil {
		return nil, errors.New("eventprocessor: nil router")
	}
	if handler == nil {
		return nil, errors.New("eventprocessor: nil handler")
	}
	if cfg.IdleTimeout <= 0 {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	return &ConsumerService{
		router:  router,
		handler: handler,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Serve runs the router until ctx is cancelled, the router fails, or - when
// IdleShutdown is set - the stream stays silent past IdleTimeout. In the
// idle-shutdown case Serve returns ErrIdleTimeout so the supervisor can tell
// a deliberate stop from a crash.
func (s *ConsumerService) Serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- s.router.Run(runCtx)
	}()

	start := time.Now()
	ticker := time.NewTicker(s.cfg.watchdogInterval())
	defer ticker.Stop()

	idleLogged := false

	for {
		select {
		case <-ctx.Done():
			cancel()
			<-routerErr
			return ctx.Err()

		case err := <-routerErr:
			if err != nil {
				return err
			}
			// Router stopped cleanly without cancellation; treat as done.
			return nil

		case <-ticker.C:
			_, _, _, last := s.handler.Stats()

			// Before the first message, measure idleness from service start
			// so an empty stream still times out.
			reference := last
			if reference.IsZero() {
				reference = start
			}

			idleFor := time.Since(reference)
			if idleFor < s.cfg.IdleTimeout {
				idleLogged = false
				continue
			}

			if s.cfg.IdleShutdown {
				metrics.ConsumerIdleShutdowns.Inc()
				s.logger.Info("Stream idle, shutting down consumer", watermill.LogFields{
					"idle_for":     idleFor.String(),
					"idle_timeout": s.cfg.IdleTimeout.String(),
				})
				cancel()
				<-routerErr
				return ErrIdleTimeout
			}

			if !idleLogged {
				idleLogged = true
				s.logger.Info("Stream idle", watermill.LogFields{
					"idle_for":     idleFor.String(),
					"idle_timeout": s.cfg.IdleTimeout.String(),
				})
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *ConsumerService) String() string {
	return "event-consumer"
}
