// Package store declares the persistence contracts the chat core and
// the identity endpoints depend on.
package store

import (
	"context"
	"errors"

	"github.com/beautyvilla/server/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateEmail is returned when account creation collides
	// with an existing email.
	ErrDuplicateEmail = errors.New("store: email already registered")
)

// CreateMessageParams carries the caller-supplied fields of a new
// message. The store assigns ID and Timestamp and sets IsRead false.
type CreateMessageParams struct {
	CustomerID int64
	AgentID    *int64
	Content    string
}

// MessageStore persists chat messages and their read-state. Messages
// are immutable except for the IsRead flag, which only ever moves from
// false to true.
type MessageStore interface {
	// CreateMessage persists a message and returns it with the
	// store-assigned id and timestamp.
	CreateMessage(ctx context.Context, params CreateMessageParams) (model.Message, error)

	// ListByCustomer returns every message of one conversation in
	// insertion order.
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Message, error)

	// ListAll returns every message in insertion order (agent-side
	// overview).
	ListAll(ctx context.Context) ([]model.Message, error)

	// SetReadByCustomer flips IsRead on all of customerID's unread
	// messages and reports how many rows changed. Idempotent.
	SetReadByCustomer(ctx context.Context, customerID int64) (int64, error)
}

// CreateUserParams carries the fields of a new account.
type CreateUserParams struct {
	Name           string
	Email          string
	Role           model.Role
	HashedPassword string
}

// UserStore persists participant accounts.
type UserStore interface {
	CreateUser(ctx context.Context, params CreateUserParams) (model.User, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	// ListAgents returns all support-agent accounts in creation order.
	ListAgents(ctx context.Context) ([]model.User, error)
}

// Store is the full persistence surface the application wires up.
type Store interface {
	MessageStore
	UserStore
}
