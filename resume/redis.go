package resume

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jltournay/farmer-power-platform-sub003/internal/wire"
)

// ErrCorrupt reports that a persisted position failed envelope validation.
// Treat it as "no stored position": subscribe from the present and let the
// TTL fallback cover the gap.
var ErrCorrupt = wire.ErrCorrupt

// RedisStore persists the position in a single Redis key so it survives
// process restarts. Positions are framed on the way in and validated on the
// way out, so corrupt or foreign bytes are detected here instead of being
// fed to a change-feed driver. An optional TTL lets an abandoned position
// age out instead of poisoning future resumes with an expired cursor.
type RedisStore struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration // 0 disables expiry
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed position store without TTL.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{rdb: client, key: key}
}

// NewRedisStoreWithTTL is like NewRedisStore; every Save refreshes the TTL.
// If ttl <= 0, the key does not expire.
func NewRedisStoreWithTTL(client redis.UniversalClient, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: client, key: key, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pos, err := wire.DecodePosition(b)
	if err != nil {
		return nil, fmt.Errorf("resume: stored position at %q: %w", s.key, err)
	}
	return pos, nil
}

func (s *RedisStore) Save(ctx context.Context, pos []byte) error {
	return s.rdb.Set(ctx, s.key, wire.EncodePosition(pos), s.ttl).Err()
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close(ctx context.Context) error { return s.rdb.Close() }
