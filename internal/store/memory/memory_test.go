package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautyvilla/server/internal/model"
	"github.com/beautyvilla/server/internal/store"
)

func TestCreateMessageAssignsMonotonicIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 7, Content: "one"})
	require.NoError(t, err)
	second, err := s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 7, Content: "two"})
	require.NoError(t, err)

	assert.Less(t, first.ID, second.ID)
	assert.False(t, first.IsRead)
	assert.False(t, first.Timestamp.IsZero())
}

func TestListByCustomerFiltersAndOrders(t *testing.T) {
	s := New()
	ctx := context.Background()

	agentID := int64(1)
	_, err := s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 7, Content: "a"})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 8, Content: "b"})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 7, AgentID: &agentID, Content: "c"})
	require.NoError(t, err)

	messages, err := s.ListByCustomer(ctx, 7)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "a", messages[0].Content)
	assert.Equal(t, "c", messages[1].Content)
	require.NotNil(t, messages[1].AgentID)
	assert.Equal(t, agentID, *messages[1].AgentID)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSetReadByCustomer(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 7, Content: "a"})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 7, Content: "b"})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, store.CreateMessageParams{CustomerID: 8, Content: "other"})
	require.NoError(t, err)

	changed, err := s.SetReadByCustomer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	// Second call touches nothing.
	changed, err = s.SetReadByCustomer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)

	other, err := s.ListByCustomer(ctx, 8)
	require.NoError(t, err)
	assert.False(t, other[0].IsRead)
}

func TestUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, store.CreateUserParams{
		Name:  "Priya",
		Email: "Priya@Test.com",
		Role:  model.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@test.com", user.Email)

	_, err = s.CreateUser(ctx, store.CreateUserParams{
		Name:  "Someone Else",
		Email: "priya@test.com",
		Role:  model.RoleCustomer,
	})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	byEmail, err := s.GetUserByEmail(ctx, "PRIYA@test.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	_, err = s.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListAgentsInCreationOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, store.CreateUserParams{Name: "c", Email: "c@t.com", Role: model.RoleCustomer})
	require.NoError(t, err)
	a1, err := s.CreateUser(ctx, store.CreateUserParams{Name: "a1", Email: "a1@t.com", Role: model.RoleAgent})
	require.NoError(t, err)
	a2, err := s.CreateUser(ctx, store.CreateUserParams{Name: "a2", Email: "a2@t.com", Role: model.RoleAgent})
	require.NoError(t, err)

	agents, err := s.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, a1.ID, agents[0].ID)
	assert.Equal(t, a2.ID, agents[1].ID)
}
