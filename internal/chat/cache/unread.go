// Package cache keeps per-conversation unread badge counts in redis.
// The message store stays authoritative: the chat service serves
// counts computed from the store and writes them through here,
// repairing any key that drifted while redis was unreachable. Every
// method is a no-op when no redis client is configured.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyTTL = 24 * time.Hour

type Unread struct {
	client *redis.Client
}

// NewUnread wraps client, which may be nil.
func NewUnread(client *redis.Client) *Unread {
	return &Unread{client: client}
}

func key(customerID int64) string {
	return "chat:unread:" + strconv.FormatInt(customerID, 10)
}

// Incr bumps the unread count for one conversation.
func (u *Unread) Incr(ctx context.Context, customerID int64) error {
	if u.client == nil {
		return nil
	}

	pipe := u.client.TxPipeline()
	pipe.Incr(ctx, key(customerID))
	pipe.Expire(ctx, key(customerID), keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("chat/cache: incr unread: %w", err)
	}

	return nil
}

// Clear resets the unread count after a mark-read.
func (u *Unread) Clear(ctx context.Context, customerID int64) error {
	if u.client == nil {
		return nil
	}

	if err := u.client.Del(ctx, key(customerID)).Err(); err != nil {
		return fmt.Errorf("chat/cache: clear unread: %w", err)
	}

	return nil
}

// Get returns the cached count. ok is false on nil client, cache miss
// or redis error.
func (u *Unread) Get(ctx context.Context, customerID int64) (count int64, ok bool) {
	if u.client == nil {
		return 0, false
	}

	n, err := u.client.Get(ctx, key(customerID)).Int64()
	if err != nil {
		return 0, false
	}

	return n, true
}

// Set overwrites the count for one conversation with the value counted
// from the store.
func (u *Unread) Set(ctx context.Context, customerID int64, count int64) error {
	if u.client == nil {
		return nil
	}

	if err := u.client.Set(ctx, key(customerID), count, keyTTL).Err(); err != nil {
		return fmt.Errorf("chat/cache: set unread: %w", err)
	}

	return nil
}
