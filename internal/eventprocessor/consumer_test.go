// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package eventprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/aerographus/internal/aggregator"
)

func TestConsumerConfig_WatchdogInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ConsumerConfig
		want time.Duration
	}{
		{"explicit", ConsumerConfig{IdleTimeout: 10 * time.Second, WatchdogInterval: 50 * time.Millisecond}, 50 * time.Millisecond},
		{"derived quarter", ConsumerConfig{IdleTimeout: 40 * time.Second}, 10 * time.Second},
		{"floored at one second", ConsumerConfig{IdleTimeout: 2 * time.Second}, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.watchdogInterval(); got != tt.want {
				t.Errorf("watchdogInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewConsumerService_Validation(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &mockIngester{}, &mockSink{}, nil)
	r, err := NewRouter(nil, nil, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	if _, err := NewConsumerService(nil, h, DefaultConsumerConfig(), nil); err == nil {
		t.Error("nil router accepted")
	}
	if _, err := NewConsumerService(r, nil, DefaultConsumerConfig(), nil); err == nil {
		t.Error("nil handler accepted")
	}
	if _, err := NewConsumerService(r, h, ConsumerConfig{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero idle timeout: error = %v, want ErrInvalidConfig", err)
	}
}

// startConsumer wires a gochannel pubsub, handler, router and consumer
// service, and returns the pubsub plus a channel carrying Serve's result.
func startConsumer(t *testing.T, ctx context.Context, ing Ingester, cfg ConsumerConfig) (*gochannel.GoChannel, <-chan error) {
	t.Helper()

	logger := watermill.NopLogger{}
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	t.Cleanup(func() { _ = pubsub.Close() })

	handler, err := NewReadingHandler(ing, &mockSink{}, nil, logger)
	if err != nil {
		t.Fatalf("NewReadingHandler() error = %v", err)
	}

	router, err := NewRouter(nil, nil, logger)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	router.AddHandler("readings", "sensors.pm25", pubsub, handler.Handle)

	svc, err := NewConsumerService(router, handler, cfg, logger)
	if err != nil {
		t.Fatalf("NewConsumerService() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	return pubsub, done
}

func TestServe_IdleShutdownOnSilentStream(t *testing.T) {
	t.Parallel()

	cfg := ConsumerConfig{
		IdleTimeout:      150 * time.Millisecond,
		IdleShutdown:     true,
		WatchdogInterval: 25 * time.Millisecond,
	}
	_, done := startConsumer(t, context.Background(), &mockIngester{err: aggregator.ErrWarmupPending}, cfg)

	select {
	case err := <-done:
		if !errors.Is(err, ErrIdleTimeout) {
			t.Fatalf("Serve() error = %v, want ErrIdleTimeout", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not shut down on idle stream")
	}
}

func TestServe_MessagesResetIdleClock(t *testing.T) {
	t.Parallel()

	cfg := ConsumerConfig{
		IdleTimeout:      300 * time.Millisecond,
		IdleShutdown:     true,
		WatchdogInterval: 25 * time.Millisecond,
	}
	ing := &mockIngester{err: aggregator.ErrWarmupPending}
	pubsub, done := startConsumer(t, context.Background(), ing, cfg)

	// Keep the stream alive past several idle windows, then go silent.
	stop := time.After(time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

feed:
	for {
		select {
		case <-ticker.C:
			msg := message.NewMessage(watermill.NewUUID(), validPayload())
			if err := pubsub.Publish("sensors.pm25", msg); err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
		case <-stop:
			break feed
		case err := <-done:
			t.Fatalf("consumer stopped while stream was active: %v", err)
		}
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrIdleTimeout) {
			t.Fatalf("Serve() error = %v, want ErrIdleTimeout", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not shut down after stream went silent")
	}

	if len(ing.readings) == 0 {
		t.Error("no readings reached the aggregator")
	}
}

func TestServe_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	_, done := startConsumer(t, ctx, &mockIngester{err: aggregator.ErrWarmupPending}, DefaultConsumerConfig())

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop on context cancellation")
	}
}
