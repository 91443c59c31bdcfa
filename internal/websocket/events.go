package websocket

import (
	"log"

	"github.com/rental-availability/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastFeedSyncCompleted sends a feed sync completed event.
func (b *EventBroadcaster) BroadcastFeedSyncCompleted(result models.FeedSyncResult) {
	payload := FeedSyncPayload{
		FeedID:        result.FeedID,
		FeedName:      result.FeedName,
		PropertyID:    result.PropertyID,
		Status:        models.SyncStatusSynced,
		ImportedCount: result.ImportedCount,
		ClearedCount:  result.ClearedCount,
	}

	if result.Error != nil {
		payload.Status = models.SyncStatusError
	}

	b.broadcast(NewMessage(TypeFeedSyncCompleted, payload))
}

// BroadcastFeedSyncError sends a feed sync error event.
func (b *EventBroadcaster) BroadcastFeedSyncError(feedID, feedName string, err error) {
	payload := FeedSyncErrorPayload{
		FeedID:   feedID,
		FeedName: feedName,
		Error:    "sync_error",
		Message:  err.Error(),
	}

	b.broadcast(NewMessage(TypeFeedSyncError, payload))
}

// BroadcastCalendarUpdated notifies clients that a property's blocked-date
// map changed.
func (b *EventBroadcaster) BroadcastCalendarUpdated(propertyID string, blockedDays int) {
	payload := CalendarUpdatedPayload{
		PropertyID:  propertyID,
		BlockedDays: blockedDays,
	}

	b.broadcast(NewMessage(TypeCalendarUpdated, payload))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	payload := NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}

	b.broadcast(NewMessage(TypeNotification, payload))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
