package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautyvilla/server/internal/auth"
	"github.com/beautyvilla/server/internal/model"
)

// A stalled write pump must never back-pressure the relay: Deliver
// fills the buffer, then drops.
func TestDeliverNeverBlocksWhenBufferIsFull(t *testing.T) {
	c := NewClient(nil, auth.Identity{ID: 7, Role: model.RoleCustomer}, nil, nil)

	// The write pump is not running, so nothing drains the buffer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(c.events)+10; i++ {
			c.Deliver(model.NewReadEvent(7))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver blocked on a full event buffer")
	}

	// Exactly the buffer survives; the overflow was dropped.
	require.Equal(t, cap(c.events), len(c.events))

	event := <-c.events
	assert.Equal(t, model.EventMessagesRead, event.Type)
}
