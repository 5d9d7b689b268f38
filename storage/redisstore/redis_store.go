// Package redisstore keeps session keys in Redis so several processes on one account share a login.
package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/hrdash/storage"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ storage.Repo = (*Store)(nil)

const (
	defaultPrefix  = "hrdash"
	defaultTimeout = 3 * time.Second
)

type Store struct {
	rdb     redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// New wraps rdb. Keys are stored as "<prefix>:<key>"; an empty prefix uses "hrdash".
func New(rdb redis.UniversalClient, prefix string) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("[redisstore.New] redis client is required")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix, timeout: defaultTimeout}, nil
}

// Dial connects to addr and verifies the connection
func Dial(ctx context.Context, addr, prefix string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "[redisstore.Dial] ping %s", addr)
	}
	return New(rdb, prefix)
}

func (s *Store) key(k string) string {
	return s.prefix + ":" + k
}

func (s *Store) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "[redisstore.Get] %s", key)
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return errors.Wrapf(s.rdb.Set(ctx, s.key(key), value, 0).Err(), "[redisstore.Set] %s", key)
}

func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return errors.Wrapf(s.rdb.Del(ctx, s.key(key)).Err(), "[redisstore.Delete] %s", key)
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
