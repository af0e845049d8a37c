package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/kit-rental/internal/model"
)

// RedisStore keeps drafts in Redis under <prefix>:<sessionID> with a
// sliding TTL refreshed on every save.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a Redis-backed store.  Callers fall back to
// NewMemoryStore when no client is available.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "draft"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string { return s.prefix + ":" + sessionID }

func (s *RedisStore) Save(ctx context.Context, sessionID string, draft model.DraftBooking) error {
	bs, err := encode(draft)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(sessionID), bs, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (model.DraftBooking, error) {
	bs, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.DraftBooking{}, ErrDraftAbsent
	}
	if err != nil {
		return model.DraftBooking{}, fmt.Errorf("load draft: %w", err)
	}
	return decode(bs)
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
