package chat_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/beautyvilla/server/internal/chat"
	"github.com/beautyvilla/server/internal/model"
	"github.com/beautyvilla/server/internal/testutil"
)

func TestRegistryLookup(t *testing.T) {
	registry := chat.NewRegistry()
	ch := &testutil.FakeChannel{}

	registry.Register(7, model.RoleCustomer, uuid.New(), ch)

	got, ok := registry.Lookup(7)
	assert.True(t, ok)
	assert.Same(t, ch, got)

	_, ok = registry.Lookup(8)
	assert.False(t, ok)
}

func TestRegistryOverwrite(t *testing.T) {
	registry := chat.NewRegistry()
	first := &testutil.FakeChannel{}
	second := &testutil.FakeChannel{}

	// Reconnect for the same participant supersedes the old entry;
	// only the newest channel receives subsequent events.
	registry.Register(7, model.RoleCustomer, uuid.New(), first)
	registry.Register(7, model.RoleCustomer, uuid.New(), second)

	delivered := registry.SendTo(7, model.NewReadEvent(7))
	assert.True(t, delivered)
	assert.Empty(t, first.Events)
	assert.Len(t, second.Events, 1)
}

func TestRegistryUnregister(t *testing.T) {
	registry := chat.NewRegistry()
	connID := uuid.New()

	registry.Register(7, model.RoleCustomer, connID, &testutil.FakeChannel{})
	registry.Unregister(7, connID)

	_, ok := registry.Lookup(7)
	assert.False(t, ok)

	// Idempotent.
	registry.Unregister(7, connID)
	_, ok = registry.Lookup(7)
	assert.False(t, ok)
}

func TestRegistryUnregisterStaleConn(t *testing.T) {
	registry := chat.NewRegistry()
	staleID := uuid.New()
	replacement := &testutil.FakeChannel{}

	registry.Register(7, model.RoleCustomer, staleID, &testutil.FakeChannel{})
	registry.Register(7, model.RoleCustomer, uuid.New(), replacement)

	// The stale pump shutting down must not evict the replacement.
	registry.Unregister(7, staleID)

	got, ok := registry.Lookup(7)
	assert.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestRegistryListByRole(t *testing.T) {
	registry := chat.NewRegistry()

	registry.Register(7, model.RoleCustomer, uuid.New(), &testutil.FakeChannel{})
	registry.Register(1, model.RoleAgent, uuid.New(), &testutil.FakeChannel{})
	registry.Register(2, model.RoleAgent, uuid.New(), &testutil.FakeChannel{})

	agents := registry.ListByRole(model.RoleAgent)
	assert.ElementsMatch(t, []int64{1, 2}, agents)

	customers := registry.ListByRole(model.RoleCustomer)
	assert.ElementsMatch(t, []int64{7}, customers)
}

func TestRegistrySendToAgents(t *testing.T) {
	registry := chat.NewRegistry()
	agent1 := &testutil.FakeChannel{}
	agent2 := &testutil.FakeChannel{}
	customer := &testutil.FakeChannel{}

	registry.Register(1, model.RoleAgent, uuid.New(), agent1)
	registry.Register(2, model.RoleAgent, uuid.New(), agent2)
	registry.Register(7, model.RoleCustomer, uuid.New(), customer)

	registry.SendToAgents(model.NewReadEvent(7))

	assert.Len(t, agent1.Events, 1)
	assert.Len(t, agent2.Events, 1)
	assert.Empty(t, customer.Events)
}

func TestRegistrySendToDisconnected(t *testing.T) {
	registry := chat.NewRegistry()

	delivered := registry.SendTo(99, model.NewReadEvent(99))
	assert.False(t, delivered)
}
