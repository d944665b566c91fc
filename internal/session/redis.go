package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-assistant/internal/common/errors"
	"loan-assistant/internal/models"
)

const keyPrefix = "loan:session:"

// RedisStore persists sessions as JSON under a TTL so abandoned
// conversations expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.SessionContext, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}

	var s models.SessionContext
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *models.SessionContext) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	if err := r.client.Set(ctx, keyPrefix+s.ID, raw, r.ttl).Err(); err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
