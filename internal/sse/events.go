// Package sse implements Server-Sent Events for real-time catalog updates.
package sse

import (
	"time"

	"github.com/stacksapp/stacks-server/internal/dto"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventBookAdded represents a book creation event. This is the only
	// catalog mutation that fans out; author edits and user creation do not.
	EventBookAdded EventType = "book.added"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// BookAddedEventData is the data payload for book added events.
// Contains the enriched book DTO so clients can render without a follow-up query.
type BookAddedEventData struct {
	Book *dto.Book `json:"book"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewBookAddedEvent creates a book added event.
func NewBookAddedEvent(book *dto.Book) Event {
	return Event{
		Type:      EventBookAdded,
		Timestamp: time.Now(),
		Data:      BookAddedEventData{Book: book},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}
