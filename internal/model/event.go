package model

import "encoding/json"

// Event kinds carried over the realtime channel. Frames with any other
// type are dropped by the reader.
const (
	EventMessage      = "message"
	EventMessagesRead = "messages_read"
)

// Event is the tagged envelope exchanged over the websocket in both
// directions, one JSON text frame per event.
type Event struct {
	Type    string       `json:"type"`
	Message *Message     `json:"message,omitempty"`
	Data    *ReadReceipt `json:"data,omitempty"`
}

// ReadReceipt identifies the conversation whose messages were marked
// read.
type ReadReceipt struct {
	CustomerID int64 `json:"userId"`
}

// NewMessageEvent wraps a persisted message for delivery.
func NewMessageEvent(m Message) Event {
	return Event{Type: EventMessage, Message: &m}
}

// NewReadEvent signals that customerID's messages were seen.
func NewReadEvent(customerID int64) Event {
	return Event{Type: EventMessagesRead, Data: &ReadReceipt{CustomerID: customerID}}
}

// Inbound is a frame received from a client. CustomerID and AgentID
// carry the recipient hint, zero when absent.
type Inbound struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	CustomerID int64  `json:"userId"`
	AgentID    int64  `json:"adminId"`
}

// DecodeInbound parses a raw text frame. A JSON error means the frame
// is malformed and should be dropped, not that the connection is bad.
func DecodeInbound(p []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(p, &in); err != nil {
		return Inbound{}, err
	}
	return in, nil
}
