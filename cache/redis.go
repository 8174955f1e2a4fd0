package cache

import (
	"context"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// Redis backs Cache with a radix connection pool.
type Redis struct {
	client radix.Client
}

// NewRedis connects a pool of size conns to addr (host:port).
func NewRedis(addr string, conns int) (*Redis, error) {
	if conns <= 0 {
		conns = 10
	}
	pool, err := radix.NewPool("tcp", addr, conns)
	if err != nil {
		return nil, err
	}
	return &Redis{client: pool}, nil
}

func (r *Redis) Get(_ context.Context, key string) (string, bool, error) {
	var raw string
	if err := r.client.Do(radix.Cmd(&raw, "GET", key)); err != nil {
		return "", false, err
	}
	if raw == "" {
		return "", false, nil
	}
	return raw, true, nil
}

func (r *Redis) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return r.client.Do(radix.Cmd(nil, "SET", key, value))
	}
	return r.client.Do(radix.FlatCmd(nil, "SETEX", key, int64(ttl/time.Second), value))
}

func (r *Redis) Delete(_ context.Context, key string) error {
	return r.client.Do(radix.Cmd(nil, "DEL", key))
}

func (r *Redis) Close() error {
	return r.client.Close()
}
