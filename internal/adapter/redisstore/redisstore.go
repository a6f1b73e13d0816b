package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/stylehub/internal/core/port"
	"github.com/niksmo/stylehub/pkg/retry"
	"github.com/redis/go-redis/v9"
)

var _ port.StateStorage = (*StateStore)(nil)

// StateStore keeps session state blobs as plain redis strings
// under "<prefix><key>".
type StateStore struct {
	rdb    redis.Cmdable
	prefix string
}

type Opt func(*StateStore)

func PrefixOpt(prefix string) Opt {
	return func(s *StateStore) {
		s.prefix = prefix
	}
}

func New(rdb redis.Cmdable, opts ...Opt) StateStore {
	s := StateStore{rdb: rdb}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Connect parses a redis:// URL and waits until the server answers a ping.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	const op = "redisstore.Connect"
	log := slog.With("op", op)

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid url: %w", op, err)
	}

	rdb := redis.NewClient(opt)
	err = retry.Do(ctx, retry.RetryConfig{
		MaxAttempts: 5,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
	}, func() error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}

	log.Info("redis is available", "addr", opt.Addr)
	return rdb, nil
}

func (s StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	const op = "StateStore.Load"

	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: key %q: %w", op, key, err)
	}
	return data, nil
}

func (s StateStore) Save(ctx context.Context, key string, data []byte) error {
	const op = "StateStore.Save"

	if err := s.rdb.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("%s: key %q: %w", op, key, err)
	}
	return nil
}
