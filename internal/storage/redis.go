package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xaenox/aura/internal/models"
)

const DefaultKeyPrefix = "aura:memory:"

// RedisStorage stores each record as a JSON string under prefix+userID.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

var _ Documents = (*RedisStorage)(nil)

// NewRedisStorage wraps client. The caller keeps ownership of connection
// setup; Close closes the client.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStorage) Load(ctx context.Context, userID string) (*models.Memory, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var m models.Memory
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode memory: %w", err)
	}
	return &m, nil
}

func (s *RedisStorage) Save(ctx context.Context, m *models.Memory) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := s.client.Set(ctx, s.key(m.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
