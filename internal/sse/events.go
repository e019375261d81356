// Package sse implements Server-Sent Events so desks can follow changes to the remote document.
package sse

import "time"

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event on every stream.
	EventConnected EventType = "connected"
	// EventDocumentReplaced is sent after every successful push of the whole document.
	EventDocumentReplaced EventType = "document.replaced"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`
}

// ConnectedEventData is the data payload for the connected event.
type ConnectedEventData struct {
	ClientID string `json:"client_id"`
}

// DocumentReplacedEventData is the data payload for document.replaced events.
type DocumentReplacedEventData struct {
	UpdatedAt time.Time `json:"updated_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewConnectedEvent creates the greeting sent when a client subscribes.
func NewConnectedEvent(clientID string) Event {
	return Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		Data:      ConnectedEventData{ClientID: clientID},
	}
}

// NewDocumentReplacedEvent creates a document.replaced event.
func NewDocumentReplacedEvent(updatedAt time.Time, sizeBytes int64) Event {
	return Event{
		Type:      EventDocumentReplaced,
		Timestamp: time.Now(),
		Data: DocumentReplacedEventData{
			UpdatedAt: updatedAt,
			SizeBytes: sizeBytes,
		},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
	}
}
