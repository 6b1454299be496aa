// redis — хранилище cookie в Redis: одна сессия на несколько машин/терминалов.
//
// Каждая cookie — строковый ключ <prefix><name>; TTL ключа берётся из Expires/MaxAge,
// так что истечение cookie выполняет сам Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/account-client/internal/session"
)

const defaultPrefix = "account:cookie:"

// Store реализует session.Store поверх Redis.
type Store struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

var _ session.Store = (*Store)(nil)

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "account:cookie:".
func New(ctx context.Context, redisURL, prefix string) (*Store, error) {
	const op = "session.redis.New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewWithClient(rdb, prefix), nil
}

// NewWithClient оборачивает готовый клиент.
func NewWithClient(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Store{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *Store) key(name string) string { return s.prefix + name }

func (s *Store) Get(ctx context.Context, name string) (string, error) {
	const op = "session.redis.Get"

	v, err := s.rdb.Get(ctx, s.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, session.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (s *Store) Set(ctx context.Context, c *http.Cookie) error {
	const op = "session.redis.Set"

	now := s.now()
	if session.IsExpired(c, now) {
		if err := s.rdb.Del(ctx, s.key(c.Name)).Err(); err != nil {
			return fmt.Errorf("%s: del: %w", op, err)
		}
		return nil
	}

	var ttl time.Duration
	if dl := session.Deadline(c, now); !dl.IsZero() {
		ttl = dl.Sub(now)
	}

	if err := s.rdb.Set(ctx, s.key(c.Name), c.Value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Remove(ctx context.Context) error {
	const op = "session.redis.Remove"

	if err := s.rdb.Del(ctx, s.key(session.AccessCookie), s.key(session.RefreshCookie)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (s *Store) Close() error { return s.rdb.Close() }
