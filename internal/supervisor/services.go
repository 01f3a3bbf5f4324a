// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package supervisor

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"
)

// ContextRunner matches *websocket.Hub's RunWithContext method. The
// interface keeps this package free of a websocket import.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// HubService wraps the WebSocket hub as a supervised service.
type HubService struct {
	hub ContextRunner
}

// NewHubService creates a hub service wrapper.
func NewHubService(hub ContextRunner) *HubService {
	return &HubService{hub: hub}
}

// Serve implements suture.Service by delegating to the hub, which already
// closes its clients and returns ctx.Err() on cancellation.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String identifies the service in supervisor logs.
func (s *HubService) String() string {
	return "websocket-hub"
}

// TerminalService wraps a service so that a specific sentinel error retires
// it instead of triggering a restart. Used for the consumer's deliberate
// idle shutdown during capture replays: without the wrapper the supervisor
// would restart the consumer against an already-drained stream forever.
type TerminalService struct {
	inner    suture.Service
	name     string
	terminal error
}

// NewTerminalService wraps inner; when Serve returns an error matching
// terminal, the wrapper attaches suture.ErrDoNotRestart so the supervisor
// retires the service.
func NewTerminalService(inner suture.Service, name string, terminal error) *TerminalService {
	return &TerminalService{inner: inner, name: name, terminal: terminal}
}

// Serve implements suture.Service.
func (s *TerminalService) Serve(ctx context.Context) error {
	err := s.inner.Serve(ctx)
	if s.terminal != nil && errors.Is(err, s.terminal) {
		return errors.Join(err, suture.ErrDoNotRestart)
	}
	return err
}

// String identifies the service in supervisor logs.
func (s *TerminalService) String() string {
	return s.name
}
