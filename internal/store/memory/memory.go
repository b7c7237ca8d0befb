// Package memory provides an in-process Store used when no database is
// configured, and by the test suite. All updates are serialized behind
// a single mutex, so the read-modify-write on IsRead is atomic.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/beautyvilla/server/internal/model"
	"github.com/beautyvilla/server/internal/store"
)

type Store struct {
	mu            sync.Mutex
	users         map[int64]model.User
	emails        map[string]int64
	messages      []model.Message
	nextUserID    int64
	nextMessageID int64
}

func New() *Store {
	return &Store{
		users:         make(map[int64]model.User),
		emails:        make(map[string]int64),
		nextUserID:    1,
		nextMessageID: 1,
	}
}

func (s *Store) CreateMessage(_ context.Context, params store.CreateMessageParams) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := model.Message{
		ID:         s.nextMessageID,
		CustomerID: params.CustomerID,
		AgentID:    params.AgentID,
		Content:    params.Content,
		Timestamp:  time.Now().UTC(),
		IsRead:     false,
	}
	s.nextMessageID++
	s.messages = append(s.messages, msg)

	return msg, nil
}

func (s *Store) ListByCustomer(_ context.Context, customerID int64) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Message
	for _, msg := range s.messages {
		if msg.CustomerID == customerID {
			out = append(out, msg)
		}
	}

	return out, nil
}

func (s *Store) ListAll(_ context.Context) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)

	return out, nil
}

func (s *Store) SetReadByCustomer(_ context.Context, customerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for i := range s.messages {
		if s.messages[i].CustomerID == customerID && !s.messages[i].IsRead {
			s.messages[i].IsRead = true
			changed++
		}
	}

	return changed, nil
}

func (s *Store) CreateUser(_ context.Context, params store.CreateUserParams) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(params.Email)
	if _, exists := s.emails[email]; exists {
		return model.User{}, store.ErrDuplicateEmail
	}

	user := model.User{
		ID:             s.nextUserID,
		Name:           params.Name,
		Email:          email,
		Role:           params.Role,
		HashedPassword: params.HashedPassword,
		CreatedAt:      time.Now().UTC(),
	}
	s.nextUserID++
	s.users[user.ID] = user
	s.emails[email] = user.ID

	return user, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}

	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return model.User{}, store.ErrNotFound
	}

	return s.users[id], nil
}

func (s *Store) ListAgents(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var agents []model.User
	// users map iteration order is random; collect by id instead.
	for id := int64(1); id < s.nextUserID; id++ {
		if user, ok := s.users[id]; ok && user.Role == model.RoleAgent {
			agents = append(agents, user)
		}
	}

	return agents, nil
}
