// Package model defines data structures shared across the application.
package model

import "time"

// Role distinguishes the two kinds of chat participants. The string
// values match what the rest of the application stores in the users
// table ("user" for customers, "admin" for support agents).
type Role string

const (
	RoleCustomer Role = "user"
	RoleAgent    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAgent
}

// User holds account information for a participant. HashedPassword is
// never serialized.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Message is a single chat utterance. AgentID is nil until an agent is
// part of the exchange; a customer's first outbound message addresses
// "any available agent". Only IsRead is ever mutated after creation.
type Message struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"userId"`
	AgentID    *int64    `json:"adminId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	IsRead     bool      `json:"isRead"`
}
