package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// startHub runs a hub behind a test server that takes the user id from
// ?user_id= (default 1).
func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := int64(1)
		if v, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64); err == nil {
			userID = v
		}
		hub.HandleWebSocket(w, r, userID)
	}))
	t.Cleanup(server.Close)
	t.Cleanup(cancel)

	return hub, server, cancel
}

func dial(t *testing.T, server *httptest.Server, userID int64) *websocket.Conn {
	t.Helper()

	url := "ws" + server.URL[len("http"):] + "?user_id=" + strconv.FormatInt(userID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial user %d: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnections(t *testing.T, hub *Hub, userID int64, want int) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.Connections(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %d: expected %d connections, got %d", userID, want, hub.Connections(userID))
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub, server, _ := startHub(t)

	conn := dial(t, server, 1)
	waitConnections(t, hub, 1, 1)

	conn.Close()
	waitConnections(t, hub, 1, 0)
}

func TestHub_Broadcast(t *testing.T) {
	hub, server, _ := startHub(t)

	conn := dial(t, server, 1)
	waitConnections(t, hub, 1, 1)

	hub.Broadcast(1, &Message{
		Type:    "slip_job_progress",
		Channel: "slip_job_progress#1",
		Data:    map[string]interface{}{"id": "jobs:1"},
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var received Message
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("read: %v", err)
	}

	if received.Type != "slip_job_progress" {
		t.Errorf("type = %q", received.Type)
	}
	if received.Channel != "slip_job_progress#1" {
		t.Errorf("channel = %q", received.Channel)
	}
	if received.UserID != 1 {
		t.Errorf("user_id = %d", received.UserID)
	}
}

func TestHub_MultipleConnections(t *testing.T) {
	hub, server, _ := startHub(t)

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		conns = append(conns, dial(t, server, 1))
	}
	waitConnections(t, hub, 1, 3)

	hub.Broadcast(1, &Message{Type: "slip_job_complete"})

	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(idx int, c *websocket.Conn) {
			defer wg.Done()
			c.SetReadDeadline(time.Now().Add(time.Second))
			var received Message
			if err := c.ReadJSON(&received); err != nil {
				t.Errorf("connection %d: %v", idx, err)
				return
			}
			if received.Type != "slip_job_complete" {
				t.Errorf("connection %d: type = %q", idx, received.Type)
			}
		}(i, conn)
	}
	wg.Wait()
}

func TestHub_DifferentUsers(t *testing.T) {
	hub, server, _ := startHub(t)

	conn1 := dial(t, server, 1)
	conn2 := dial(t, server, 2)
	waitConnections(t, hub, 1, 1)
	waitConnections(t, hub, 2, 1)

	hub.Broadcast(1, &Message{Type: "private"})

	conn1.SetReadDeadline(time.Now().Add(time.Second))
	var received Message
	if err := conn1.ReadJSON(&received); err != nil {
		t.Fatalf("user 1: %v", err)
	}
	if received.Type != "private" {
		t.Errorf("user 1: type = %q", received.Type)
	}

	conn2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := conn2.ReadJSON(&received); err == nil {
		t.Error("user 2 should not receive user 1's events")
	}
}

func TestHub_BroadcastQueueFull(t *testing.T) {
	// no Run loop, so nothing drains the queue
	hub := NewHub()
	hub.broadcast = make(chan *Message, 1)

	hub.Broadcast(1, &Message{Type: "first"})
	hub.Broadcast(1, &Message{Type: "dropped"})

	if got := len(hub.broadcast); got != 1 {
		t.Fatalf("queue length = %d", got)
	}
	if msg := <-hub.broadcast; msg.Type != "first" {
		t.Errorf("queued %q, want first", msg.Type)
	}
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	hub, server, cancel := startHub(t)

	conn := dial(t, server, 1)
	waitConnections(t, hub, 1, 1)

	cancel()

	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the socket to be closed after shutdown")
	}
}
