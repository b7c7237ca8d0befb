// Package websocket adapts a coder/websocket connection to the chat
// core's Channel contract: a read pump feeding the relay engine and a
// write pump draining a buffered event channel.
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/beautyvilla/server/internal/auth"
	"github.com/beautyvilla/server/internal/chat"
	"github.com/beautyvilla/server/internal/model"
)

const writeTimeout = 10 * time.Second

// Client is one admitted connection.
type Client struct {
	ConnID   uuid.UUID
	Identity auth.Identity

	conn     *websocket.Conn
	service  *chat.Service
	registry *chat.Registry
	events   chan model.Event
}

func NewClient(conn *websocket.Conn, identity auth.Identity, service *chat.Service, registry *chat.Registry) *Client {
	return &Client{
		ConnID:   uuid.New(),
		Identity: identity,
		conn:     conn,
		service:  service,
		registry: registry,
		events:   make(chan model.Event, 64),
	}
}

// Deliver queues an event for the write pump. It never blocks; when
// the buffer is full the event is dropped and the recipient catches up
// on its next poll.
func (c *Client) Deliver(event model.Event) {
	select {
	case c.events <- event:
	default:
		log.Println("skipping event - channel full or client slow")
	}
}

// WritePump serializes queued events to the outgoing websocket stream,
// one JSON text frame per event.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case event := <-c.events:
			p, err := json.Marshal(event)
			if err != nil {
				slog.ErrorContext(ctx, "failed to encode event",
					"error", err,
					"event_type", event.Type)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, p)
			cancel()
			if err != nil {
				slog.WarnContext(ctx, "failed to write frame",
					"error", err,
					"participant_id", c.Identity.ID)
				continue
			}

		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "context cancelled")
			return
		}
	}
}

// ReadPump reads incoming frames and hands them to the chat core.
// Closing the connection, for any reason, synchronously unregisters
// the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.registry.Unregister(c.Identity.ID, c.ConnID)
		c.conn.CloseNow()
	}()

	for {
		msgType, p, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure &&
				status != websocket.StatusGoingAway &&
				status != -1 {
				log.Printf("%v", err)
			}
			return
		}

		// Only text frames carry chat events.
		if msgType != websocket.MessageText {
			continue
		}

		in, err := model.DecodeInbound(p)
		if err != nil {
			// Garbage input drops the frame, not the connection.
			log.Printf("failed to process payload from client: %v", err)
			continue
		}

		c.dispatch(ctx, in)
	}
}

func (c *Client) dispatch(ctx context.Context, in model.Inbound) {
	switch in.Type {
	case model.EventMessage:
		hint := in.AgentID
		if c.Identity.Role == model.RoleAgent {
			hint = in.CustomerID
		}

		if _, err := c.service.Send(ctx, c.Identity.ID, c.Identity.Role, hint, in.Content); err != nil {
			// Do not fabricate a success frame; the sender retries or
			// falls back to the HTTP path.
			log.Printf("failed to relay message: %v", err)
		}

	case model.EventMessagesRead:
		customerID := c.Identity.ID
		if c.Identity.Role == model.RoleAgent {
			customerID = in.CustomerID
		}
		if customerID <= 0 {
			return
		}

		if err := c.service.MarkRead(ctx, customerID); err != nil {
			log.Printf("failed to mark messages read: %v", err)
		}

	default:
		log.Printf("ignoring unknown event type %q", in.Type)
	}
}
