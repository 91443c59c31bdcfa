package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeFeedSyncCompleted MessageType = "feed.sync_completed"
	TypeFeedSyncError     MessageType = "feed.sync_error"
	TypeCalendarUpdated   MessageType = "calendar.updated"
	TypeNotification      MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// FeedSyncPayload is the payload for feed.sync_completed events.
type FeedSyncPayload struct {
	FeedID        string `json:"feed_id"`
	FeedName      string `json:"feed_name"`
	PropertyID    string `json:"property_id"`
	Status        string `json:"status"`
	ImportedCount int    `json:"imported_count"`
	ClearedCount  int    `json:"cleared_count"`
}

// FeedSyncErrorPayload is the payload for feed.sync_error events.
type FeedSyncErrorPayload struct {
	FeedID   string `json:"feed_id"`
	FeedName string `json:"feed_name"`
	Error    string `json:"error"`
	Message  string `json:"message"`
}

// CalendarUpdatedPayload is the payload for calendar.updated events,
// emitted when a property's blocked-date map changes.
type CalendarUpdatedPayload struct {
	PropertyID  string `json:"property_id"`
	BlockedDays int    `json:"blocked_days"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}
