package clients

import (
	"context"
	"fmt"

	ws "hub3-slips/internal/transport/websocket"
)

const (
	EventJobProgress = "slip_job_progress"
	EventJobComplete = "slip_job_complete"
	EventJobFailed   = "slip_job_failed"
)

type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func channel(event string, userID int64) string {
	return fmt.Sprintf("%s#%d", event, userID)
}

func (c *WebSocketClient) NotifyJobProgress(
	ctx context.Context,
	userID int64,
	jobID string,
	progress float64,
	stage string,
) error {
	if c.hub == nil {
		return nil
	}

	data := map[string]interface{}{
		"id":       jobID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    EventJobProgress,
		Channel: channel(EventJobProgress, userID),
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyJobComplete(
	ctx context.Context,
	userID int64,
	jobID string,
	url string,
	filename string,
) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    EventJobComplete,
		Channel: channel(EventJobComplete, userID),
		Data: map[string]interface{}{
			"id":       jobID,
			"url":      url,
			"filename": filename,
			"user_id":  userID,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyJobFailed(ctx context.Context, userID int64, jobID string, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    EventJobFailed,
		Channel: channel(EventJobFailed, userID),
		Data: map[string]interface{}{
			"id":      jobID,
			"message": errMsg,
			"user_id": userID,
		},
	})
	return nil
}
