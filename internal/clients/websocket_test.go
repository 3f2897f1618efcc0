package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "hub3-slips/internal/transport/websocket"

	"github.com/gorilla/websocket"
)

func TestWebSocketClient_NotifyJobProgress(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	// test websocket server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, 1)
	}))
	defer server.Close()

	// connect
	wsURL := "ws" + server.URL[4:] + "?user_id=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	// wait for registration
	time.Sleep(100 * time.Millisecond)

	client := NewWebSocketClient(hub)

	err = client.NotifyJobProgress(context.Background(), 1, "jobs:123", 50.5, "")
	if err != nil {
		t.Fatalf("Failed to notify progress: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received ws.Message
	err = conn.ReadJSON(&received)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if received.Type != EventJobProgress {
		t.Errorf("Expected type 'slip_job_progress', got '%s'", received.Type)
	}
	if received.UserID != 1 {
		t.Errorf("Expected userID 1, got %d", received.UserID)
	}
	if received.Channel != "slip_job_progress#1" {
		t.Errorf("Expected channel 'slip_job_progress#1', got '%s'", received.Channel)
	}

	dataBytes, err := json.Marshal(received.Data)
	if err != nil {
		t.Fatalf("Failed to marshal data: %v", err)
	}

	var data map[string]interface{}
	err = json.Unmarshal(dataBytes, &data)
	if err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}

	if data["id"] != "jobs:123" {
		t.Errorf("Expected id 'jobs:123', got '%v'", data["id"])
	}
	if data["progress"].(float64) != 50.5 {
		t.Errorf("Expected progress 50.5, got %v", data["progress"])
	}
}

func TestWebSocketClient_NotifyJobComplete(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	// test websocket server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, 1)
	}))
	defer server.Close()

	// connect
	wsURL := "ws" + server.URL[4:] + "?user_id=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	// wait for registration
	time.Sleep(100 * time.Millisecond)

	client := NewWebSocketClient(hub)

	err = client.NotifyJobComplete(context.Background(), 1, "jobs:123", "https://example.com/slips.xlsx", "slips_20240101.xlsx")
	if err != nil {
		t.Fatalf("Failed to notify complete: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received ws.Message
	err = conn.ReadJSON(&received)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if received.Type != EventJobComplete {
		t.Errorf("Expected type 'slip_job_complete', got '%s'", received.Type)
	}
	if received.UserID != 1 {
		t.Errorf("Expected userID 1, got %d", received.UserID)
	}
	if received.Channel != "slip_job_complete#1" {
		t.Errorf("Expected channel 'slip_job_complete#1', got '%s'", received.Channel)
	}

	dataBytes, err := json.Marshal(received.Data)
	if err != nil {
		t.Fatalf("Failed to marshal data: %v", err)
	}

	var data map[string]interface{}
	err = json.Unmarshal(dataBytes, &data)
	if err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}

	if data["id"] != "jobs:123" {
		t.Errorf("Expected id 'jobs:123', got '%v'", data["id"])
	}
	if data["url"] != "https://example.com/slips.xlsx" {
		t.Errorf("Expected url 'https://example.com/slips.xlsx', got '%v'", data["url"])
	}
	if data["filename"] != "slips_20240101.xlsx" {
		t.Errorf("Expected filename 'slips_20240101.xlsx', got '%v'", data["filename"])
	}
	if int64(data["user_id"].(float64)) != 1 {
		t.Errorf("Expected user_id 1, got %v", data["user_id"])
	}
}

func TestWebSocketClient_NilHub(t *testing.T) {
	client := NewWebSocketClient(nil)

	// a nil hub is a no-op
	err := client.NotifyJobProgress(context.Background(), 1, "jobs:123", 50.5, "")
	if err != nil {
		t.Errorf("Should not return error with nil hub, got: %v", err)
	}

	err = client.NotifyJobComplete(context.Background(), 1, "jobs:123", "https://example.com/slips.xlsx", "file.xlsx")
	if err != nil {
		t.Errorf("Should not return error with nil hub, got: %v", err)
	}
}

func TestWebSocketClient_NotifyJobFailed(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, 1)
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[4:] + "?user_id=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	// wait for registration
	time.Sleep(50 * time.Millisecond)

	client := NewWebSocketClient(hub)

	err = client.NotifyJobFailed(context.Background(), 1, "jobs:123", "register upload failed")
	if err != nil {
		t.Fatalf("Failed to notify failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received ws.Message
	err = conn.ReadJSON(&received)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if received.Type != EventJobFailed {
		t.Errorf("Expected type 'slip_job_failed', got '%s'", received.Type)
	}
	if received.Channel != "slip_job_failed#1" {
		t.Errorf("Expected channel 'slip_job_failed#1', got '%s'", received.Channel)
	}

	dataBytes, _ := json.Marshal(received.Data)
	var data map[string]interface{}
	_ = json.Unmarshal(dataBytes, &data)

	if data["id"] != "jobs:123" {
		t.Errorf("Expected id 'jobs:123', got '%v'", data["id"])
	}
	if data["message"] != "register upload failed" {
		t.Errorf("Expected message 'register upload failed', got '%v'", data["message"])
	}
}

func TestWebSocketClient_MultipleProgressUpdates(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	// test websocket server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, 1)
	}))
	defer server.Close()

	// connect
	wsURL := "ws" + server.URL[4:] + "?user_id=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	// wait for registration
	time.Sleep(100 * time.Millisecond)

	client := NewWebSocketClient(hub)

	progresses := []float64{10.0, 25.0, 50.0, 75.0, 100.0}
	for _, progress := range progresses {
		err = client.NotifyJobProgress(context.Background(), 1, "jobs:123", progress, "")
		if err != nil {
			t.Fatalf("Failed to notify progress: %v", err)
		}

		conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		var received ws.Message
		err = conn.ReadJSON(&received)
		if err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}

		dataBytes, _ := json.Marshal(received.Data)
		var data map[string]interface{}
		json.Unmarshal(dataBytes, &data)

		if data["progress"].(float64) != progress {
			t.Errorf("Expected progress %.1f, got %.1f", progress, data["progress"].(float64))
		}
	}
}
