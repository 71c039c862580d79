package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/osvita-dev/kids-registry-api/internal/models"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound reports a missing or already cleared session record.
var ErrSessionNotFound = fmt.Errorf("session not found")

// SessionRepository persists access-gate sessions in Redis so that logout
// and expiry revoke them.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Save stores the session until its expiry plus a short grace so an
// expired-but-present record can still be observed and purged.
func (r *SessionRepository) Save(ctx context.Context, session models.AccessSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	ttl := time.Until(session.ExpiresAt) + time.Hour
	if err := r.client.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.ID, err)
	}
	return nil
}

// Find loads a session record by ID.
func (r *SessionRepository) Find(ctx context.Context, id string) (*models.AccessSession, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}
	var session models.AccessSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// Delete removes a session record.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}
