package sessions

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

type RedisRevoker struct {
	client rueidis.Client
	prefix string
}

func NewRedisRevoker(client rueidis.Client, keyPrefix string) *RedisRevoker {
	return &RedisRevoker{
		client: client,
		prefix: keyPrefix,
	}
}

// Revoke marks the token as logged out until it would have expired anyway.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	cmd := r.client.B().Set().Key(r.key(tokenID)).Value("1").PxMilliseconds(ttl.Milliseconds()).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.client.B().Exists().Key(r.key(tokenID)).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRevoker) key(tokenID string) string {
	return r.prefix + tokenID
}
