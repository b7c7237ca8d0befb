package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/beautyvilla/server/internal/model"
	"github.com/beautyvilla/server/internal/store"
)

var (
	// ErrEmptyContent rejects messages with no text body left after
	// sanitization.
	ErrEmptyContent = errors.New("internal/chat: empty message content")

	// ErrMissingRecipient rejects an agent send without a concrete
	// customer; an agent always replies to a specific customer.
	ErrMissingRecipient = errors.New("internal/chat: agent send requires a customer id")

	// ErrUnknownRole rejects a sender whose role is neither customer
	// nor agent.
	ErrUnknownRole = errors.New("internal/chat: unknown sender role")
)

type sanitizer interface {
	Sanitize(s string) string
}

// UnreadCache holds per-conversation unread badge counts. The message
// store is authoritative; Conversations repairs any cached count that
// disagrees with the store.
type UnreadCache interface {
	Incr(ctx context.Context, customerID int64) error
	Clear(ctx context.Context, customerID int64) error
	Get(ctx context.Context, customerID int64) (count int64, ok bool)
	Set(ctx context.Context, customerID int64, count int64) error
}

// Service is the relay engine plus read-state tracking. Persistence is
// the durability boundary: a message is stored before any delivery is
// attempted, and delivery to a disconnected recipient is not an error.
type Service struct {
	store     store.MessageStore
	users     store.UserStore
	registry  *Registry
	unread    UnreadCache
	sanitizer sanitizer
}

func NewService(st store.Store, registry *Registry, unread UnreadCache) *Service {
	return &Service{
		store:     st,
		users:     st,
		registry:  registry,
		unread:    unread,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Send persists a message from the given sender and forwards it to the
// recipient's channel when one is registered. recipientHint is the
// agent id a customer is addressing (zero for "any available agent"),
// or the customer id an agent is replying to. The returned message
// carries the store-assigned id and timestamp so the sender's own UI
// can render it immediately.
func (s *Service) Send(ctx context.Context, senderID int64, senderRole model.Role, recipientHint int64, content string) (model.Message, error) {
	content = strings.TrimSpace(s.sanitizer.Sanitize(content))
	if content == "" {
		return model.Message{}, ErrEmptyContent
	}

	params := store.CreateMessageParams{Content: content}
	switch senderRole {
	case model.RoleCustomer:
		params.CustomerID = senderID
		if recipientHint > 0 {
			agentID := recipientHint
			params.AgentID = &agentID
		}
	case model.RoleAgent:
		if recipientHint <= 0 {
			return model.Message{}, ErrMissingRecipient
		}
		agentID := senderID
		params.CustomerID = recipientHint
		params.AgentID = &agentID
	default:
		return model.Message{}, ErrUnknownRole
	}

	msg, err := s.store.CreateMessage(ctx, params)
	if err != nil {
		return model.Message{}, fmt.Errorf("internal/chat: persist message: %w", err)
	}

	// A key that missed this increment would undercount until its TTL
	// expires, so drop it and let the next summary poll rebuild it.
	if err := s.unread.Incr(ctx, msg.CustomerID); err != nil {
		log.Printf("%v", err)
		if err := s.unread.Clear(ctx, msg.CustomerID); err != nil {
			log.Printf("%v", err)
		}
	}

	// Best-effort delivery. The authoritative result of a send is the
	// persisted record; an offline recipient fetches it on next poll.
	event := model.NewMessageEvent(msg)
	switch senderRole {
	case model.RoleCustomer:
		if msg.AgentID != nil {
			s.registry.SendTo(*msg.AgentID, event)
		} else {
			s.registry.SendToAgents(event)
		}
	case model.RoleAgent:
		s.registry.SendTo(msg.CustomerID, event)
	}

	return msg, nil
}

// MarkRead flips every unread message of one conversation to read,
// then notifies the customer's channel and all connected agents so
// unread badges recompute. Idempotent; storage errors propagate.
func (s *Service) MarkRead(ctx context.Context, customerID int64) error {
	if _, err := s.store.SetReadByCustomer(ctx, customerID); err != nil {
		return fmt.Errorf("internal/chat: mark read: %w", err)
	}

	// A failed delete leaves a stale key behind; Conversations serves
	// store counts and overwrites it on the next summary poll.
	if err := s.unread.Clear(ctx, customerID); err != nil {
		log.Printf("%v", err)
	}

	event := model.NewReadEvent(customerID)
	s.registry.SendTo(customerID, event)
	s.registry.SendToAgents(event)

	return nil
}

// History returns one conversation in insertion order.
func (s *Service) History(ctx context.Context, customerID int64) ([]model.Message, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// ConversationSummary is one row of the agent-side overview.
type ConversationSummary struct {
	model.User
	UnreadCount int64 `json:"unreadCount"`
}

// Conversations builds the agent overview: one entry per customer with
// messages, in first-contact order, each with its unread count. Counts
// are computed from the messages themselves and written through to the
// badge cache, replacing any key that drifted while redis was down.
func (s *Service) Conversations(ctx context.Context) ([]ConversationSummary, error) {
	messages, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("internal/chat: list conversations: %w", err)
	}

	order := make([]int64, 0)
	unread := make(map[int64]int64)
	seen := make(map[int64]bool)
	for _, msg := range messages {
		if !seen[msg.CustomerID] {
			seen[msg.CustomerID] = true
			order = append(order, msg.CustomerID)
		}
		if !msg.IsRead {
			unread[msg.CustomerID]++
		}
	}

	summaries := make([]ConversationSummary, 0, len(order))
	for _, customerID := range order {
		user, err := s.users.GetUserByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("internal/chat: list conversations: %w", err)
		}

		count := unread[customerID]
		if cached, ok := s.unread.Get(ctx, customerID); !ok || cached != count {
			if err := s.unread.Set(ctx, customerID, count); err != nil {
				log.Printf("%v", err)
			}
		}

		summaries = append(summaries, ConversationSummary{User: user, UnreadCount: count})
	}

	return summaries, nil
}

// FirstAgent resolves the default recipient for a customer's HTTP send
// when no agent is addressed. The websocket path broadcasts instead.
func (s *Service) FirstAgent(ctx context.Context) (int64, error) {
	agents, err := s.users.ListAgents(ctx)
	if err != nil {
		return 0, fmt.Errorf("internal/chat: list agents: %w", err)
	}
	if len(agents) == 0 {
		return 0, store.ErrNotFound
	}

	return agents[0].ID, nil
}
