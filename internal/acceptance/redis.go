package acceptance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs acceptance state with redis so it survives responder
// restarts and can be shared between instances. A zero ttl stores records
// without expiry, matching the memory backend.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisOptions struct {
	Host     string
	Port     int
	DB       int
	Password string
	Prefix   string
	TTL      time.Duration
}

func NewRedisStore(opts RedisOptions) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "accept:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: opts.TTL}
}

func (s *RedisStore) key(clientKey string) string { return s.prefix + clientKey }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) IsAccepted(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Accept(ctx context.Context, key, fingerprint string) (Record, error) {
	rec := Record{
		Key:         key,
		Fingerprint: fingerprint,
		AcceptedAt:  time.Now(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	return rec, s.rdb.Set(ctx, s.key(key), string(b), s.ttl).Err()
}

// Get returns the stored record, or nil when the key has none.
func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
