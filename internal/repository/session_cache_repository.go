package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
)

const sessionKeyPrefix = "session"

// SessionCacheRepository stores resolved session contexts in Redis, keyed per user and session.
type SessionCacheRepository struct {
	client *redis.Client
}

// NewSessionCacheRepository constructs the repository. A nil client turns every call into a miss.
func NewSessionCacheRepository(client *redis.Client) *SessionCacheRepository {
	return &SessionCacheRepository{client: client}
}

// SessionKey returns the cache key of one session.
func SessionKey(userID, sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", sessionKeyPrefix, userID, sessionID)
}

// Get loads a cached actor. Returns ErrCacheMiss when absent.
func (r *SessionCacheRepository) Get(ctx context.Context, userID, sessionID string) (*models.Actor, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	key := SessionKey(userID, sessionID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var actor models.Actor
	if err := json.Unmarshal(raw, &actor); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return &actor, nil
}

// Set caches the actor of a session for ttl.
func (r *SessionCacheRepository) Set(ctx context.Context, actor *models.Actor, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	key := SessionKey(actor.UserID, actor.SessionID)
	payload, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete drops one cached session.
func (r *SessionCacheRepository) Delete(ctx context.Context, userID, sessionID string) error {
	if r.client == nil {
		return nil
	}
	key := SessionKey(userID, sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// DeleteUser drops every cached session of a user, e.g. after a role change.
func (r *SessionCacheRepository) DeleteUser(ctx context.Context, userID string) error {
	if r.client == nil {
		return nil
	}
	pattern := SessionKey(userID, "*")
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	return nil
}
