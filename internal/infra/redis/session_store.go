package redis

import (
	"context"
	"encoding/json"
	"time"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/repository"
)

// SessionStore keeps app sessions in Redis so every server process observes
// the same token namespace. Expiry rides on the key TTL.
var _ repository.SessionRepository = (*SessionStore)(nil)

type SessionStore struct {
	client RedisClient
}

func NewSessionStore(client RedisClient) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(token string) string { return "session:" + token }

func (s *SessionStore) Store(ctx context.Context, token string, sess *model.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(token), data, ttl)
}

func (s *SessionStore) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionExpired
	}
	data, err := s.client.Get(ctx, sessionKey(token))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrSessionExpired
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token))
}
