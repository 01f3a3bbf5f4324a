// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package websocket

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub creates and starts a hub, stopped automatically at test end.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(10 * time.Millisecond)
	return hub
}

// createTestClient creates a client without a live connection
func createTestClient(hub *Hub) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, conn: nil, send: make(chan Message, 256)}
}

// registerClient registers a client and waits for registration to complete
func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

func testDecision() *models.AlertDecision {
	return &models.AlertDecision{
		Key:       models.LocationKey{Latitude: 51.956168, Longitude: 7.651169},
		Timestamp: "2019-01-07T00:00:00",
		BoxLabel:  "Feinstaub Box",
		Mean:      25.88437,
		Fired:     true,
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	checks := []struct {
		name   string
		check  bool
		errMsg string
	}{
		{"clients map", hub.clients != nil, "clients map not initialized"},
		{"broadcast channel", hub.broadcast != nil, "broadcast channel not initialized"},
		{"Register channel", hub.Register != nil, "Register channel not initialized"},
		{"Unregister channel", hub.Unregister != nil, "Unregister channel not initialized"},
		{"empty clients", len(hub.clients) == 0, "clients map should be empty"},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.errMsg)
		}
	}
}

func TestHub_ClientRegistration(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)

	registerClient(hub, client)
	if got := hub.GetClientCount(); got != 1 {
		t.Errorf("client count after register = %d, want 1", got)
	}

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("client count after unregister = %d, want 0", got)
	}
}

func TestHub_UnregisterNonExistentClient(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)

	// Unregistering a client that never registered must not panic or
	// disturb the count.
	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("client count = %d, want 0", got)
	}
}

func TestHub_SendAfterRemovalIsRejected(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(hub, client)

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	// The hub closed the send channel on removal; a late Send must be
	// rejected, not panic with a send on a closed channel.
	if client.Send(Message{Type: MessageTypeSnapshot}) {
		t.Error("Send after removal = true, want false")
	}
}

func TestHub_BroadcastAlertReachesClients(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(hub, client)

	decision := testDecision()
	hub.BroadcastAlert(decision)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeAlert {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeAlert)
		}
		data, ok := msg.Data.(AlertData)
		if !ok {
			t.Fatalf("message data type = %T, want AlertData", msg.Data)
		}
		if data.Decision != decision {
			t.Error("alert data does not carry the original decision")
		}
		if !strings.Contains(data.Message, "!!! WARNING !!!") {
			t.Errorf("fired alert message = %q, missing warning marker", data.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive broadcast alert")
	}
}

func TestHub_BroadcastSnapshotReachesClients(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(hub, client)

	snapshot := &models.Snapshot{LatestTimestamp: "2019-01-07T00:00:00"}
	hub.BroadcastSnapshot(snapshot)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeSnapshot {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeSnapshot)
		}
		got, ok := msg.Data.(*models.Snapshot)
		if !ok {
			t.Fatalf("message data type = %T, want *models.Snapshot", msg.Data)
		}
		if got != snapshot {
			t.Error("snapshot data does not carry the original snapshot")
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive broadcast snapshot")
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := setupHub(t)

	first := createTestClient(hub)
	second := createTestClient(hub)
	registerClient(hub, second)
	registerClient(hub, first)

	hub.BroadcastAlert(testDecision())
	time.Sleep(50 * time.Millisecond)

	for i, client := range []*Client{first, second} {
		select {
		case <-client.send:
		default:
			t.Errorf("client %d did not receive broadcast", i)
		}
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := setupHub(t)

	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message)} // no buffer
	registerClient(hub, slow)

	hub.BroadcastAlert(testDecision())
	time.Sleep(50 * time.Millisecond)

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("client count = %d, want 0 after dropping slow client", got)
	}

	// The hub closed the channel; a receive must not block.
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHub_ConcurrentOperations(t *testing.T) {
	hub := setupHub(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := createTestClient(hub)
			hub.Register <- client
			hub.BroadcastAlert(testDecision())
			hub.Unregister <- client
		}()
	}
	wg.Wait()
	time.Sleep(50 * time.Millisecond)

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("client count = %d, want 0", got)
	}
}

func TestHub_RunWithContext_Shutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- hub.RunWithContext(ctx)
	}()
	time.Sleep(10 * time.Millisecond)

	client := createTestClient(hub)
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop on context cancellation")
	}

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("client count after shutdown = %d, want 0", got)
	}

	// Client channels are closed during shutdown.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel after shutdown")
		}
	default:
		t.Error("send channel was not closed during shutdown")
	}
}

func TestHub_RunWithContext_DeadlineExceeded(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- hub.RunWithContext(ctx)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("RunWithContext() error = %v, want context.DeadlineExceeded", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop on deadline")
	}
}

func TestHub_BroadcastChannelFull(t *testing.T) {
	// No running hub: fills the broadcast buffer and verifies the overflow
	// drop path does not block.
	hub := NewHub()

	for i := 0; i < 300; i++ {
		hub.BroadcastAlert(testDecision())
	}

	if got := len(hub.broadcast); got != cap(hub.broadcast) {
		t.Errorf("broadcast buffer length = %d, want %d", got, cap(hub.broadcast))
	}
}
