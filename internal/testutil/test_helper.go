// Package testutil provides shared fixtures for the test suite. Tests
// run against the in-memory store so no database is required.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/beautyvilla/server/internal/auth"
	"github.com/beautyvilla/server/internal/chat"
	"github.com/beautyvilla/server/internal/chat/cache"
	"github.com/beautyvilla/server/internal/model"
	"github.com/beautyvilla/server/internal/store"
	"github.com/beautyvilla/server/internal/store/memory"
)

const JWTSecret = "test-secret"

// NewChatService wires a chat service over a fresh in-memory store.
func NewChatService() (*chat.Service, *chat.Registry, *memory.Store) {
	st := memory.New()
	registry := chat.NewRegistry()
	service := chat.NewService(st, registry, cache.NewUnread(nil))

	return service, registry, st
}

// SeedUsers creates one customer and one agent account.
func SeedUsers(t *testing.T, st store.Store) (customer, agent model.User) {
	t.Helper()

	ctx := context.Background()

	customer, err := st.CreateUser(ctx, store.CreateUserParams{
		Name:           "Priya",
		Email:          "priya@test.com",
		Role:           model.RoleCustomer,
		HashedPassword: "x",
	})
	if err != nil {
		t.Fatalf("seed customer: %+v", err)
	}

	agent, err = st.CreateUser(ctx, store.CreateUserParams{
		Name:           "Villa Support",
		Email:          "support@test.com",
		Role:           model.RoleAgent,
		HashedPassword: "x",
	})
	if err != nil {
		t.Fatalf("seed agent: %+v", err)
	}

	return customer, agent
}

// MakeToken mints a short-lived JWT for a participant.
func MakeToken(t *testing.T, id int64, role model.Role) string {
	t.Helper()

	token, err := auth.MakeJWT(auth.Identity{ID: id, Role: role}, JWTSecret, 5*time.Minute)
	if err != nil {
		t.Fatalf("make token: %+v", err)
	}

	return token
}

// FakeChannel records delivered events for assertions.
type FakeChannel struct {
	Events []model.Event
}

func (f *FakeChannel) Deliver(event model.Event) {
	f.Events = append(f.Events, event)
}
