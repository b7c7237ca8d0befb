// Package postgres implements store.Store on top of a pgx connection
// pool. Schema migrations live in sql/schema and are applied with
// goose at startup.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beautyvilla/server/internal/model"
	"github.com/beautyvilla/server/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateMessage(ctx context.Context, params store.CreateMessageParams) (model.Message, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO messages (user_id, admin_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, admin_id, content, timestamp, is_read`,
		params.CustomerID, params.AgentID, params.Content)

	msg, err := scanMessage(row)
	if err != nil {
		return model.Message{}, fmt.Errorf("store/postgres: create message: %w", err)
	}

	return msg, nil
}

func (s *Store) ListByCustomer(ctx context.Context, customerID int64) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, admin_id, content, timestamp, is_read
		FROM messages
		WHERE user_id = $1
		ORDER BY id`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: list by customer: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

func (s *Store) ListAll(ctx context.Context) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, admin_id, content, timestamp, is_read
		FROM messages
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: list all: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

func (s *Store) SetReadByCustomer(ctx context.Context, customerID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE`,
		customerID)
	if err != nil {
		return 0, fmt.Errorf("store/postgres: set read: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (s *Store) CreateUser(ctx context.Context, params store.CreateUserParams) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, LOWER($2), $3, $4)
		RETURNING id, name, email, role, password, created_at`,
		params.Name, params.Email, params.HashedPassword, string(params.Role))

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation; the only unique constraint on
		// users is the email.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, store.ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("store/postgres: create user: %w", err)
	}

	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, role, password, created_at
		FROM users
		WHERE id = $1`,
		id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, fmt.Errorf("store/postgres: get user by id: %w", err)
	}

	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, role, password, created_at
		FROM users
		WHERE email = LOWER($1)`,
		email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, fmt.Errorf("store/postgres: get user by email: %w", err)
	}

	return user, nil
}

func (s *Store) ListAgents(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, role, password, created_at
		FROM users
		WHERE role = $1
		ORDER BY id`,
		string(model.RoleAgent))
	if err != nil {
		return nil, fmt.Errorf("store/postgres: list agents: %w", err)
	}
	defer rows.Close()

	var agents []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("store/postgres: list agents: %w", err)
		}
		agents = append(agents, user)
	}

	return agents, rows.Err()
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var msg model.Message
	err := row.Scan(&msg.ID, &msg.CustomerID, &msg.AgentID, &msg.Content, &msg.Timestamp, &msg.IsRead)
	return msg, err
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	var out []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("store/postgres: scan message: %w", err)
		}
		out = append(out, msg)
	}

	return out, rows.Err()
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		role string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.HashedPassword, &user.CreatedAt)
	user.Role = model.Role(role)
	return user, err
}
