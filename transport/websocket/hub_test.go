package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func sampleState() *service.StateView {
	return &service.StateView{
		Board:         []string{"..bb.", "...bb", "w...b", "ww...", ".ww.."},
		CurrentPlayer: engine.White,
		MoveCount:     3,
		LastAction:    "D c1->c3",
		Pieces:        map[string]int{"white": 5, "black": 5},
	}
}

// waitForClients polls the running hub until it reports want clients
func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients, got %d", want, hub.ClientCount())
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialised")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "abcd")
	other := newTestClient(hub, "ef01")
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{SessionID: "abcd", State: sampleState(), Event: "state_update"})

	select {
	case data := <-watcher.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "abcd" {
			t.Errorf("Expected sessionID abcd, got %s", message.SessionID)
		}
		if message.State == nil || message.State.LastAction != "D c1->c3" {
			t.Errorf("State not transmitted: %+v", message.State)
		}
	default:
		t.Fatal("Watcher received nothing")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the update")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "state_update"})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Client with a full send buffer should be unregistered")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func newWSServer(hub *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := newWSServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitForClients(t, hub, 1)

	conn.Close()

	waitForClients(t, hub, 0)
}

func TestWebSocketStateUpdate(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := newWSServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.BroadcastToSession("msg-test", sampleState())
	hub.BroadcastEvent("msg-test", "spy_found", map[string]string{"square": "c3"})

	conn.SetReadDeadline(time.Now().Add(time.Second))

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Failed to read state update: %v", err)
	}
	if first.Event != "state_update" || first.State == nil {
		t.Fatalf("Expected state_update with state, got %+v", first)
	}
	if first.State.MoveCount != 3 || first.State.CurrentPlayer != engine.White {
		t.Errorf("State not correctly received: %+v", first.State)
	}
	if first.State.Board[2] != "w...b" {
		t.Errorf("Board row 2 = %q", first.State.Board[2])
	}

	var second Message
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if second.Event != "spy_found" {
		t.Errorf("Expected spy_found event, got %s", second.Event)
	}
}
