package storage

import (
	"context"
	"time"
)

type redisKV interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Redis stores values as plain redis strings. A zero ttl keeps them forever.
type Redis struct {
	client redisKV
	ttl    time.Duration
}

func NewRedis(client redisKV, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Read(ctx context.Context, key string) (string, bool, error) {
	return r.client.Lookup(ctx, key)
}

func (r *Redis) Write(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl)
}
