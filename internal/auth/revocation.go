package auth

import (
	"context"
	"sync"
	"time"

	"github.com/samhans17/delivery-tracker/internal/logging"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers token ids that were logged out before they
// expired.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewRevocationStore uses Redis when addr is set and reachable. Otherwise
// revocations live in process memory and are lost on restart.
func NewRevocationStore(ctx context.Context, addr string) RevocationStore {
	if addr == "" {
		logging.Log.Warn("REDIS_ADDR is not set, session revocations are kept in memory")
		return NewMemoryStore()
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logging.WithField("error", err.Error()).Error("could not reach Redis, session revocations are kept in memory")
		_ = rdb.Close()
		return NewMemoryStore()
	}

	logging.WithField("addr", addr).Info("connected to Redis")
	return NewRedisStore(rdb)
}

// -------------------------
// Redis
// -------------------------

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func revokedKey(jti string) string {
	return "session:revoked:" + jti
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// -------------------------
// Memory
// -------------------------

type MemoryStore struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.items {
		if !exp.After(now) {
			delete(s.items, k)
		}
	}
	if until.After(now) {
		s.items[jti] = until
	}
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.items[jti]
	return ok && exp.After(s.now()), nil
}
