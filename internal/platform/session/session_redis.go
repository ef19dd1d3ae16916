// Package session provides the redis-backed cookie session store and the
// gin middleware that exposes the current session to handlers.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"microblog_backend/internal/feature/auth/domain/entity"
	"microblog_backend/internal/feature/auth/usecase"

	"github.com/redis/go-redis/v9"
)

// Store keeps sessions and their flash messages in Redis.
// Expiration is delegated to Redis TTLs.
type Store struct {
	client   *redis.Client
	prefix   string
	guestTTL time.Duration
}

// NewStore creates a new Store instance.
// guestTTL bounds the lifetime of anonymous sessions.
func NewStore(client *redis.Client, prefix string, guestTTL time.Duration) *Store {
	return &Store{
		client:   client,
		prefix:   prefix,
		guestTTL: guestTTL,
	}
}

// sessionKey returns the Redis key for a session.
func (s *Store) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

// flashKey returns the Redis key for a session's flash message list.
func (s *Store) flashKey(id string) string {
	return fmt.Sprintf("%s:flash:%s", s.prefix, id)
}

// newSessionID returns a 64-character hex string from a CSPRNG.
func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create persists a new session. userID 0 creates a guest session with the
// store's guest TTL; otherwise ttl determines the session lifetime.
func (s *Store) Create(ctx context.Context, userID uint, remember bool, ttl time.Duration) (*entity.Session, error) {
	if userID == 0 {
		ttl = s.guestTTL
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entity.Session{
		ID:        id,
		UserID:    userID,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.sessionKey(id), data, ttl).Err(); err != nil {
		return nil, err
	}
	return session, nil
}

// FindByID retrieves a session by its ID.
func (s *Store) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Delete removes a session and its pending flash messages.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.sessionKey(id), s.flashKey(id)).Err()
}

// PushFlash appends a one-shot notice to the session's flash list.
// The list inherits the session's remaining TTL so it cannot outlive it.
func (s *Store) PushFlash(ctx context.Context, id, message string) error {
	key := s.flashKey(id)
	if err := s.client.RPush(ctx, key, message).Err(); err != nil {
		return err
	}

	ttl, err := s.client.TTL(ctx, s.sessionKey(id)).Result()
	if err != nil || ttl <= 0 {
		ttl = s.guestTTL
	}
	return s.client.Expire(ctx, key, ttl).Err()
}

// PopFlashes returns and clears all pending flash messages for the session.
func (s *Store) PopFlashes(ctx context.Context, id string) ([]string, error) {
	key := s.flashKey(id)

	messages, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
