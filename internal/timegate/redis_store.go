package timegate

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/analyst/pkg/redis"
)

// guardTTL keeps a day key around long enough to cover any timezone offset
const guardTTL = 48 * time.Hour

// ErrStoreDisabled is returned by claims against a disabled Redis client
var ErrStoreDisabled = errors.New("redis guard store disabled")

// RedisStore shares guards between processes
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func guardKey(day, task string) string {
	return redis.Key("timegate", day, task)
}

// HasRun implements Store
func (s *RedisStore) HasRun(ctx context.Context, day, task string) (bool, error) {
	return s.client.Exists(ctx, guardKey(day, task))
}

// MarkRun implements Store
func (s *RedisStore) MarkRun(ctx context.Context, day, task string) error {
	_, err := s.client.SetOnce(ctx, guardKey(day, task), guardTTL)
	return err
}

// TryMark implements Store with SETNX, so exactly one process wins the day
func (s *RedisStore) TryMark(ctx context.Context, day, task string) (bool, error) {
	if !s.client.Enabled() {
		return false, ErrStoreDisabled
	}
	return s.client.SetOnce(ctx, guardKey(day, task), guardTTL)
}
